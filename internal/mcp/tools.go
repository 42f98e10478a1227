package mcp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/odos/internal/catalog"
	"github.com/claude/odos/internal/models"
)

const (
	defaultSearchLimit  = 25
	defaultHistoryLimit = 10
)

// historyRange returns the requested range, or ok=false when neither bound
// was given.
func historyRange(startStr, endStr string) (start, end time.Time, ok bool, err error) {
	if startStr == "" && endStr == "" {
		return time.Time{}, time.Time{}, false, nil
	}

	end = time.Now()
	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, false, err
		}
		if isDateOnly(endStr) {
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	start = end.AddDate(0, 0, -7)
	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, false, err
		}
	}
	return start, end, true, nil
}

func isDateOnly(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolSearchExercises = mcp.NewTool("search_exercises",
	mcp.WithDescription("Search the exercise catalog by muscle group, equipment and free text. Returns matching exercise definitions in catalog order."),
	mcp.WithString("muscle", mcp.Description("Muscle group (e.g. chest, upper_back, quadriceps). Defaults to all.")),
	mcp.WithString("equipment", mcp.Description("Equipment class (e.g. dumbbell, barbell, bodyweight). Defaults to all.")),
	mcp.WithString("query", mcp.Description("Case-insensitive text matched against exercise names")),
	mcp.WithNumber("limit", mcp.Description("Maximum results. Defaults to 25.")),
)

var toolGetExercise = mcp.NewTool("get_exercise",
	mcp.WithDescription("Get one exercise definition by catalog id, including instructions and image URLs."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Catalog id (e.g. Barbell_Bench_Press_-_Medium_Grip)")),
)

var toolListPlans = mcp.NewTool("list_plans",
	mcp.WithDescription("List workout plans with their default exercises and whether a generated version is cached."),
)

var toolResolvePlan = mcp.NewTool("resolve_plan",
	mcp.WithDescription("Resolve a plan into the exercises a session would start with. Returns the generated list when cached, otherwise the defaults found in the catalog."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Plan name (e.g. Push, Pull, Legs)")),
)

var toolGetWorkoutHistory = mcp.NewTool("get_workout_history",
	mcp.WithDescription("Completed workouts with every exercise and set. Without dates returns the most recent workouts."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 7 days before end when end is set.")),
	mcp.WithString("end", mcp.Description("End date, inclusive for YYYY-MM-DD. Defaults to now when start is set.")),
	mcp.WithNumber("limit", mcp.Description("Number of recent workouts when no dates are given. Defaults to 10.")),
	mcp.WithString("id", mcp.Description("Return only the workout with this id")),
)

var toolGetLastPerformance = mcp.NewTool("get_last_performance",
	mcp.WithDescription("The most recent recorded sets of an exercise, matched by name ignoring case."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name")),
)

// --- Tool handlers ---

func (h *handlers) searchExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	muscle, err := models.ParseMuscleGroup(req.GetString("muscle", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	equipment, err := models.ParseEquipment(req.GetString("equipment", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	defs, err := h.ds.SearchExercises(ctx, catalog.Selection{
		Muscle:    muscle,
		Equipment: equipment,
		Query:     req.GetString("query", ""),
	})
	if err != nil {
		h.log.Error("mcp search_exercises", "error", err)
		return mcp.NewToolResultError("search failed: " + err.Error()), nil
	}
	if limit := req.GetInt("limit", defaultSearchLimit); limit > 0 && len(defs) > limit {
		defs = defs[:limit]
	}

	return jsonResult(defs)
}

func (h *handlers) getExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	def, err := h.ds.GetExercise(ctx, id)
	if err != nil {
		return mcp.NewToolResultError("exercise lookup failed: " + err.Error()), nil
	}
	return jsonResult(def)
}

func (h *handlers) listPlans(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plans, err := h.ds.ListPlans(ctx)
	if err != nil {
		h.log.Error("mcp list_plans", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(plans)
}

func (h *handlers) resolvePlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	res, err := h.ds.ResolvePlan(ctx, name)
	if err != nil {
		h.log.Error("mcp resolve_plan", "plan", name, "error", err)
		return mcp.NewToolResultError("resolve failed: " + err.Error()), nil
	}
	return jsonResult(res)
}

func (h *handlers) getWorkoutHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if idStr := req.GetString("id", ""); idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return mcp.NewToolResultError("invalid workout id"), nil
		}
		rec, err := h.ds.GetWorkout(ctx, id)
		if err != nil {
			return mcp.NewToolResultError("workout lookup failed: " + err.Error()), nil
		}
		return jsonResult(rec)
	}

	start, end, ranged, err := historyRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	var records []models.WorkoutRecord
	if ranged {
		records, err = h.ds.QueryWorkouts(ctx, start, end)
	} else {
		records, err = h.ds.ListWorkouts(ctx, req.GetInt("limit", defaultHistoryLimit))
	}
	if err != nil {
		h.log.Error("mcp get_workout_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(records)
}

func (h *handlers) getLastPerformance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	ex, err := h.ds.LastPerformance(ctx, name)
	if err != nil {
		h.log.Error("mcp get_last_performance", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if ex == nil {
		return mcp.NewToolResultText("no recorded history for " + name), nil
	}
	return jsonResult(ex)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
