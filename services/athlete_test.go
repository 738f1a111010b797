package services

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"club-points-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalName(t *testing.T) {
	cases := map[string]string{
		"ana souza":        "Ana Souza",
		"  bruno   lima  ": "Bruno Lima",
		"CARLA MENDES":     "Carla Mendes",
	}
	for in, want := range cases {
		assert.Equal(t, want, CanonicalName(in))
	}
}

func TestRegisterAthlete(t *testing.T) {
	db := openTestDB(t)
	svc := NewAthleteService(db)

	app := fiber.New()
	app.Post("/athletes", svc.RegisterAthlete)

	req := httptest.NewRequest("POST", "/athletes",
		strings.NewReader(`{"display_name":"  joão   da silva ","category":"Junior","seed":"B"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var athlete models.Athlete
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&athlete))
	assert.Equal(t, "João Da Silva", athlete.DisplayName)
	assert.Equal(t, "joao-da-silva", athlete.Slug)

	// Same name, different spacing — still one ranking identity.
	dup := httptest.NewRequest("POST", "/athletes",
		strings.NewReader(`{"display_name":"joão da  silva"}`))
	dup.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(dup)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestRegisterAthlete_RequiresName(t *testing.T) {
	db := openTestDB(t)
	svc := NewAthleteService(db)

	app := fiber.New()
	app.Post("/athletes", svc.RegisterAthlete)

	req := httptest.NewRequest("POST", "/athletes", strings.NewReader(`{"display_name":"   "}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
