package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/claude/odos/internal/models"
)

// flattenExercises converts a record into table rows, keeping list order in
// the position columns.
func flattenExercises(rec models.WorkoutRecord) ([]models.WorkoutExerciseRow, []models.WorkoutSetRow, error) {
	exRows := make([]models.WorkoutExerciseRow, 0, len(rec.Exercises))
	var setRows []models.WorkoutSetRow

	for i, e := range rec.Exercises {
		muscles, err := json.Marshal(nonNil(e.PrimaryMuscles))
		if err != nil {
			return nil, nil, fmt.Errorf("marshaling primary muscles: %w", err)
		}
		instructions, err := json.Marshal(nonNil(e.Instructions))
		if err != nil {
			return nil, nil, fmt.Errorf("marshaling instructions: %w", err)
		}
		exRows = append(exRows, models.WorkoutExerciseRow{
			ID:              e.ID,
			WorkoutID:       rec.ID,
			Position:        i,
			CatalogID:       e.CatalogID,
			Name:            e.Name,
			Equipment:       e.Equipment,
			Level:           e.Level,
			PrimaryMuscles:  string(muscles),
			Instructions:    string(instructions),
			RecommendedReps: e.RecommendedReps,
			Notes:           e.Notes,
		})
		for j, s := range e.Sets {
			setRows = append(setRows, models.WorkoutSetRow{
				ID:         s.ID,
				ExerciseID: e.ID,
				Position:   j,
				Weight:     s.Weight,
				Reps:       s.Reps,
				Completed:  s.Completed,
				Previous:   s.Previous,
			})
		}
	}
	return exRows, setRows, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// insertExercises batch-inserts exercise rows.
func insertExercises(ctx context.Context, tx *sql.Tx, rows []models.WorkoutExerciseRow) error {
	if len(rows) == 0 {
		return nil
	}

	query := `INSERT INTO workout_exercises (id, workout_id, position, catalog_id, name,
		equipment, level, primary_muscles, instructions, recommended_reps, notes) VALUES `
	args := make([]any, 0, len(rows)*11)
	valueStrings := make([]string, 0, len(rows))

	for _, r := range rows {
		valueStrings = append(valueStrings, "(?,?,?,?,?,?,?,?,?,?,?)")
		args = append(args, r.ID.String(), r.WorkoutID.String(), r.Position, r.CatalogID, r.Name,
			r.Equipment, r.Level, r.PrimaryMuscles, r.Instructions, r.RecommendedReps, r.Notes)
	}

	if _, err := tx.ExecContext(ctx, query+strings.Join(valueStrings, ","), args...); err != nil {
		return fmt.Errorf("inserting workout exercises: %w", err)
	}
	return nil
}

// insertSets batch-inserts set rows.
func insertSets(ctx context.Context, tx *sql.Tx, rows []models.WorkoutSetRow) error {
	if len(rows) == 0 {
		return nil
	}

	query := `INSERT INTO workout_sets (id, exercise_id, position, weight, reps, completed, previous) VALUES `
	args := make([]any, 0, len(rows)*7)
	valueStrings := make([]string, 0, len(rows))

	for _, r := range rows {
		valueStrings = append(valueStrings, "(?,?,?,?,?,?,?)")
		args = append(args, r.ID.String(), r.ExerciseID.String(), r.Position,
			r.Weight, r.Reps, r.Completed, r.Previous)
	}

	if _, err := tx.ExecContext(ctx, query+strings.Join(valueStrings, ","), args...); err != nil {
		return fmt.Errorf("inserting workout sets: %w", err)
	}
	return nil
}

// loadExercises reads one workout's exercises and sets in list order.
func (db *DB) loadExercises(ctx context.Context, workoutID uuid.UUID) ([]models.WorkoutExercise, error) {
	exRows, err := db.queryExerciseRows(ctx,
		`SELECT id, workout_id, position, catalog_id, name, equipment, level,
		 primary_muscles, instructions, recommended_reps, notes
		 FROM workout_exercises WHERE workout_id = ? ORDER BY position ASC`, workoutID.String())
	if err != nil {
		return nil, err
	}
	setRows, err := db.querySetRows(ctx,
		`SELECT s.id, s.exercise_id, s.position, s.weight, s.reps, s.completed, s.previous
		 FROM workout_sets s JOIN workout_exercises e ON e.id = s.exercise_id
		 WHERE e.workout_id = ?
		 ORDER BY e.position ASC, s.position ASC`, workoutID.String())
	if err != nil {
		return nil, err
	}
	return assembleExercises(exRows, setRows)
}

func (db *DB) queryExerciseRows(ctx context.Context, query string, args ...any) ([]models.WorkoutExerciseRow, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying workout exercises: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutExerciseRow
	for rows.Next() {
		var (
			r             models.WorkoutExerciseRow
			id, workoutID string
		)
		if err := rows.Scan(&id, &workoutID, &r.Position, &r.CatalogID, &r.Name, &r.Equipment, &r.Level,
			&r.PrimaryMuscles, &r.Instructions, &r.RecommendedReps, &r.Notes); err != nil {
			return nil, fmt.Errorf("scanning workout exercise: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing exercise id: %w", err)
		}
		if r.WorkoutID, err = uuid.Parse(workoutID); err != nil {
			return nil, fmt.Errorf("parsing workout id: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (db *DB) querySetRows(ctx context.Context, query string, args ...any) ([]models.WorkoutSetRow, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying workout sets: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutSetRow
	for rows.Next() {
		var (
			r              models.WorkoutSetRow
			id, exerciseID string
		)
		if err := rows.Scan(&id, &exerciseID, &r.Position, &r.Weight, &r.Reps, &r.Completed, &r.Previous); err != nil {
			return nil, fmt.Errorf("scanning workout set: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing set id: %w", err)
		}
		if r.ExerciseID, err = uuid.Parse(exerciseID); err != nil {
			return nil, fmt.Errorf("parsing exercise id: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// assembleExercises joins set rows onto their exercises. Both inputs must be
// ordered by position.
func assembleExercises(exRows []models.WorkoutExerciseRow, setRows []models.WorkoutSetRow) ([]models.WorkoutExercise, error) {
	out := make([]models.WorkoutExercise, 0, len(exRows))
	index := make(map[uuid.UUID]int, len(exRows))

	for _, r := range exRows {
		e := models.WorkoutExercise{
			ID:              r.ID,
			CatalogID:       r.CatalogID,
			Name:            r.Name,
			Equipment:       r.Equipment,
			Level:           r.Level,
			RecommendedReps: r.RecommendedReps,
			Notes:           r.Notes,
			Sets:            []models.Set{},
		}
		if err := json.Unmarshal([]byte(r.PrimaryMuscles), &e.PrimaryMuscles); err != nil {
			return nil, fmt.Errorf("decoding primary muscles: %w", err)
		}
		if err := json.Unmarshal([]byte(r.Instructions), &e.Instructions); err != nil {
			return nil, fmt.Errorf("decoding instructions: %w", err)
		}
		index[r.ID] = len(out)
		out = append(out, e)
	}

	for _, s := range setRows {
		i, ok := index[s.ExerciseID]
		if !ok {
			continue
		}
		out[i].Sets = append(out[i].Sets, models.Set{
			ID:        s.ID,
			Weight:    s.Weight,
			Reps:      s.Reps,
			Completed: s.Completed,
			Previous:  s.Previous,
		})
	}
	return out, nil
}
