package services

import (
	"errors"
	"log"
	"strings"

	"club-points-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// AthleteService owns registration — the only code path that creates
// Athlete rows. The points engine reads athletes but never writes them.
type AthleteService struct {
	DB *gorm.DB
}

func NewAthleteService(db *gorm.DB) *AthleteService {
	return &AthleteService{DB: db}
}

var nameCaser = cases.Title(language.Und)

// CanonicalName normalizes a display name before it becomes the
// ranking join key: collapse whitespace, title-case. Two registrations
// differing only in spacing or case would otherwise produce two
// ranking rows for one athlete.
func CanonicalName(name string) string {
	return nameCaser.String(strings.Join(strings.Fields(name), " "))
}

// --- Admin Handlers ---

// RegisterAthlete creates a new athlete (Admin only)
func (s *AthleteService) RegisterAthlete(c *fiber.Ctx) error {
	var req struct {
		DisplayName string `json:"display_name"`
		Category    string `json:"category"`
		Seed        string `json:"seed"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "display_name is required"})
	}

	name := CanonicalName(req.DisplayName)
	athlete := models.Athlete{
		ID:          uuid.NewString(),
		DisplayName: name,
		Slug:        slug.Make(name),
		Category:    req.Category,
		Seed:        req.Seed,
	}
	if err := s.DB.Create(&athlete).Error; err != nil {
		log.Printf("DB Error creating athlete: %v", err)
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Failed to create athlete (duplicate name?)"})
	}
	return c.Status(fiber.StatusCreated).JSON(athlete)
}

// ListAthletes fetches all athletes (Admin only)
func (s *AthleteService) ListAthletes(c *fiber.Ctx) error {
	var athletes []models.Athlete
	if err := s.DB.Order("display_name ASC").Find(&athletes).Error; err != nil {
		log.Printf("DB Error fetching athletes: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch athletes"})
	}
	return c.JSON(athletes)
}

// GetAthlete fetches one athlete by id
func (s *AthleteService) GetAthlete(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid athlete ID"})
	}

	var athlete models.Athlete
	if err := s.DB.First(&athlete, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Athlete not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(athlete)
}
