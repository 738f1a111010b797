// handlers/points_routes.go
package handlers

import (
	"errors"
	"strconv"
	"time"

	"club-points-system/middleware"
	"club-points-system/models"
	"club-points-system/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// statusForError maps engine sentinel errors to HTTP statuses. The
// response body always carries enough context (athlete, delta) for the
// admin to decide between retry and manual reconcile.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrUnknownPolicy):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrAthleteNotFound), errors.Is(err, services.ErrMatchNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrConcurrencyConflict):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrStoreUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// SetupPointsRoutes wires the point engine, audit ledger, and ranking
// reads. Mutating routes sit behind the admin context middleware; the
// ranking and score reads are plain gateway-authenticated GETs.
func SetupPointsRoutes(app *fiber.App, athleteService *services.AthleteService, matchService *services.MatchService, syncService *services.SyncService, auditService *services.AuditService) {
	admin := app.Group("/admin", middleware.AdminContextMiddleware())

	// --- Registration (sole creator of Athlete rows) ---
	admin.Post("/athletes", athleteService.RegisterAthlete)
	admin.Get("/athletes", athleteService.ListAthletes)
	admin.Get("/athletes/:id", athleteService.GetAthlete)

	// --- Match recording ---
	admin.Post("/athletes/:id/matches", func(c *fiber.Ctx) error {
		athleteID := c.Params("id")
		adminID := c.Locals("admin_id").(string)

		var req struct {
			Category models.PointsCategory `json:"category"`
			Outcome  models.MatchOutcome   `json:"outcome"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		res, err := matchService.RecordMatch(athleteID, req.Category, req.Outcome, adminID)
		if err != nil {
			if errors.Is(err, services.ErrPartialSync) {
				// The points landed; only the ranking mirror lagged.
				return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
					"warning":     "ranking projection out of sync, reconcile pending",
					"match_id":    res.MatchID,
					"new_balance": res.NewBalance,
				})
			}
			return c.Status(statusForError(err)).JSON(fiber.Map{
				"error":      err.Error(),
				"athlete_id": athleteID,
			})
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	})

	// --- Match rollback (compensating reversal) ---
	admin.Delete("/matches/:id", func(c *fiber.Ctx) error {
		matchID := c.Params("id")
		adminID := c.Locals("admin_id").(string)

		res, err := matchService.RollbackMatch(matchID, adminID)
		if err != nil {
			if errors.Is(err, services.ErrPartialSync) {
				return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
					"warning":     "ranking projection out of sync, reconcile pending",
					"new_balance": res.NewBalance,
				})
			}
			return c.Status(statusForError(err)).JSON(fiber.Map{
				"error":    err.Error(),
				"match_id": matchID,
			})
		}
		return c.JSON(fiber.Map{"message": "Match rolled back", "new_balance": res.NewBalance})
	})

	// --- Manual balance adjustment ---
	admin.Post("/athletes/:id/adjustments", func(c *fiber.Ctx) error {
		athleteID := c.Params("id")
		adminID := c.Locals("admin_id").(string)

		var req struct {
			Delta int64 `json:"delta"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		res, err := syncService.AdjustBalance(athleteID, req.Delta, adminID)
		if err != nil {
			if errors.Is(err, services.ErrPartialSync) {
				return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
					"warning":     "ranking projection out of sync, reconcile pending",
					"new_balance": res.NewBalance,
				})
			}
			return c.Status(statusForError(err)).JSON(fiber.Map{
				"error":      err.Error(),
				"athlete_id": athleteID,
				"delta":      req.Delta,
			})
		}
		return c.JSON(res)
	})

	// --- Recent matches for one athlete ---
	admin.Get("/athletes/:id/matches", func(c *fiber.Ctx) error {
		days, err := strconv.Atoi(c.Query("days", "30"))
		if err != nil || days <= 0 {
			days = 30
		}
		matches, err := matchService.RecentMatches(c.Params("id"), days)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch matches"})
		}
		return c.JSON(matches)
	})

	// --- Audit ledger (read-only) ---
	admin.Get("/audit", func(c *fiber.Ctx) error {
		filter, err := parseAuditFilter(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		page, _ := strconv.Atoi(c.Query("page", "1"))
		size, _ := strconv.Atoi(c.Query("size", "20"))

		result, err := auditService.Query(filter, page, size)
		if err != nil {
			return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(result)
	})

	admin.Get("/audit/summary", func(c *fiber.Ctx) error {
		filter, err := parseAuditFilter(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		summary, err := auditService.Summarize(filter)
		if err != nil {
			return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(summary)
	})

	// --- Public projections ---
	app.Get("/rankings", func(c *fiber.Ctx) error {
		var entries []models.RankingEntry
		q := syncService.DB.Order("total DESC, athlete_name ASC")
		if cat := c.Query("category"); cat != "" {
			q = q.Where("category = ?", cat)
		}
		if err := q.Find(&entries).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch rankings"})
		}
		return c.JSON(entries)
	})

	app.Get("/rankings/:slug", func(c *fiber.Ctx) error {
		var entry models.RankingEntry
		if err := syncService.DB.Where("slug = ?", c.Params("slug")).First(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Ranking entry not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
		}
		return c.JSON(entry)
	})

	app.Get("/athletes/:id/score", func(c *fiber.Ctx) error {
		var bal models.ScoreBalance
		if err := syncService.DB.Where("athlete_id = ?", c.Params("id")).First(&bal).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// No mutation yet — the balance is implicitly zero.
				return c.JSON(fiber.Map{"athlete_id": c.Params("id"), "total": 0})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
		}
		return c.JSON(bal)
	})
}

func parseAuditFilter(c *fiber.Ctx) (services.AuditFilter, error) {
	filter := services.AuditFilter{
		AthleteName: c.Query("athlete"),
		AdminID:     c.Query("admin"),
	}
	if fromStr := c.Query("from"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return filter, errors.New("invalid 'from' timestamp, expected RFC3339")
		}
		filter.From = &from
	}
	if toStr := c.Query("to"); toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			return filter, errors.New("invalid 'to' timestamp, expected RFC3339")
		}
		filter.To = &to
	}
	return filter, nil
}
