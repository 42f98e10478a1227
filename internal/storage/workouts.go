package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/claude/odos/internal/models"
)

// timeLayout is fixed-width so that stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing stored time %q: %w", s, err)
	}
	return t, nil
}

// InsertWorkout writes a completed workout with all of its exercises and sets
// in one transaction. Records are never updated afterwards.
func (db *DB) InsertWorkout(ctx context.Context, rec models.WorkoutRecord) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning workout insert: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO workouts (id, name, started_at, completed_at, duration_ns)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.Name, formatTime(rec.StartedAt), formatTime(rec.CompletedAt),
		rec.Duration.Nanoseconds())
	if err != nil {
		return fmt.Errorf("inserting workout: %w", err)
	}

	exRows, setRows, err := flattenExercises(rec)
	if err != nil {
		return err
	}
	if err := insertExercises(ctx, tx, exRows); err != nil {
		return err
	}
	if err := insertSets(ctx, tx, setRows); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing workout: %w", err)
	}
	return nil
}

// AppendWorkout records a finished session.
func (db *DB) AppendWorkout(ctx context.Context, rec models.WorkoutRecord) error {
	return db.InsertWorkout(ctx, rec)
}

// CountWorkouts returns the history length.
func (db *DB) CountWorkouts(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM workouts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting workouts: %w", err)
	}
	return n, nil
}

// ListWorkouts returns up to limit records, most recently completed first.
// A limit of zero or less returns all of them.
func (db *DB) ListWorkouts(ctx context.Context, limit int) ([]models.WorkoutRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.queryWorkoutRows(ctx,
		`SELECT seq, id, name, started_at, completed_at, duration_ns
		 FROM workouts ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return db.loadRecords(ctx, rows)
}

// QueryWorkouts retrieves workouts started in [start, end), newest first.
func (db *DB) QueryWorkouts(ctx context.Context, start, end time.Time) ([]models.WorkoutRecord, error) {
	rows, err := db.queryWorkoutRows(ctx,
		`SELECT seq, id, name, started_at, completed_at, duration_ns
		 FROM workouts
		 WHERE started_at >= ? AND started_at < ?
		 ORDER BY started_at DESC, seq DESC`,
		formatTime(start), formatTime(end))
	if err != nil {
		return nil, err
	}
	return db.loadRecords(ctx, rows)
}

// GetWorkout retrieves a single workout by id.
func (db *DB) GetWorkout(ctx context.Context, id uuid.UUID) (*models.WorkoutRecord, error) {
	rows, err := db.queryWorkoutRows(ctx,
		`SELECT seq, id, name, started_at, completed_at, duration_ns
		 FROM workouts WHERE id = ?`, id.String())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	recs, err := db.loadRecords(ctx, rows)
	if err != nil {
		return nil, err
	}
	return &recs[0], nil
}

// LastPerformance returns the named exercise as it was recorded in the most
// recent workout that contains it, matching the name ignoring case. It
// returns nil without error when the exercise has never been recorded.
func (db *DB) LastPerformance(ctx context.Context, name string) (*models.WorkoutExercise, error) {
	var exerciseID string
	err := db.conn.QueryRowContext(ctx,
		`SELECT e.id
		 FROM workout_exercises e JOIN workouts w ON w.id = e.workout_id
		 WHERE e.name = ? COLLATE NOCASE
		 ORDER BY w.seq DESC, e.position ASC
		 LIMIT 1`, name).Scan(&exerciseID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying last performance: %w", err)
	}

	ex, err := db.queryExerciseRows(ctx,
		`SELECT id, workout_id, position, catalog_id, name, equipment, level,
		 primary_muscles, instructions, recommended_reps, notes
		 FROM workout_exercises WHERE id = ?`, exerciseID)
	if err != nil {
		return nil, err
	}
	sets, err := db.querySetRows(ctx,
		`SELECT id, exercise_id, position, weight, reps, completed, previous
		 FROM workout_sets WHERE exercise_id = ? ORDER BY position ASC`, exerciseID)
	if err != nil {
		return nil, err
	}

	exercises, err := assembleExercises(ex, sets)
	if err != nil {
		return nil, err
	}
	if len(exercises) == 0 {
		return nil, nil
	}
	return &exercises[0], nil
}

// queryWorkoutRows reads every row before returning. The pool has a single
// connection, so rows must be closed before the next query is issued.
func (db *DB) queryWorkoutRows(ctx context.Context, query string, args ...any) ([]models.WorkoutRow, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutRow
	for rows.Next() {
		var (
			w                  models.WorkoutRow
			id                 string
			started, completed string
		)
		if err := rows.Scan(&w.Seq, &id, &w.Name, &started, &completed, &w.DurationNs); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		if w.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing workout id: %w", err)
		}
		if w.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		if w.CompletedAt, err = parseTime(completed); err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

func (db *DB) loadRecords(ctx context.Context, rows []models.WorkoutRow) ([]models.WorkoutRecord, error) {
	records := make([]models.WorkoutRecord, 0, len(rows))
	for _, w := range rows {
		exercises, err := db.loadExercises(ctx, w.ID)
		if err != nil {
			return nil, err
		}
		records = append(records, models.WorkoutRecord{
			ID:          w.ID,
			Name:        w.Name,
			StartedAt:   w.StartedAt,
			CompletedAt: w.CompletedAt,
			Duration:    time.Duration(w.DurationNs),
			Exercises:   exercises,
		})
	}
	return records, nil
}
