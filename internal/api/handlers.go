package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/junkeythong/amlichvietnam/internal/config"
	"github.com/junkeythong/amlichvietnam/internal/database"
	"github.com/junkeythong/amlichvietnam/internal/festival"
	"github.com/junkeythong/amlichvietnam/internal/logger"
	"github.com/junkeythong/amlichvietnam/lunar"
)

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	db       *database.DB
	resolver *festival.Resolver
	cfg      *config.Config
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *database.DB, cfg *config.Config, log *slog.Logger) *Handlers {
	resolver := festival.NewResolver(db, cfg.TimezoneOffset)
	return &Handlers{
		db:       db,
		resolver: resolver,
		cfg:      cfg,
		logger:   log,
	}
}

// conversionResult pairs a civil day with its lunar date.
type conversionResult struct {
	Solar lunar.SolarDate `json:"solar"`
	Lunar lunar.LunarDate `json:"lunar"`
}

// monthInfo describes one month of a lunar year.
type monthInfo struct {
	Number int             `json:"number"`
	Leap   bool            `json:"leap"`
	Days   int             `json:"days"`
	Starts lunar.SolarDate `json:"starts"`
}

// yearInfo describes a full lunar year.
type yearInfo struct {
	Year      int         `json:"year"`
	LeapMonth int         `json:"leap_month,omitempty"`
	Months    []monthInfo `json:"months"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Check database health
	if err := h.db.Health(ctx); err != nil {
		h.logger.Warn("health check failed", slog.Any("error", err))
		WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", "HEALTH_CHECK_FAILED")
		return
	}

	WriteSuccess(w, map[string]string{
		"status": "healthy",
	})
}

// ConvertSolar handles GET /api/v1/solar/{year}/{month}/{day}
func (h *Handlers) ConvertSolar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	date, ok := h.pathSolarDate(w, r)
	if !ok {
		return
	}
	tz, ok := h.queryTz(w, r)
	if !ok {
		return
	}

	ld, err := lunar.SolarToLunar(date, tz)
	if err != nil {
		h.writeLunarError(ctx, w, err)
		return
	}

	WriteSuccess(w, conversionResult{Solar: date, Lunar: ld})
}

// ConvertLunar handles GET /api/v1/lunar/{year}/{month}/{day}?leap=true
func (h *Handlers) ConvertLunar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	year, ok := h.pathInt(w, r, "year")
	if !ok {
		return
	}
	month, ok := h.pathInt(w, r, "month")
	if !ok {
		return
	}
	day, ok := h.pathInt(w, r, "day")
	if !ok {
		return
	}
	tz, ok := h.queryTz(w, r)
	if !ok {
		return
	}

	leap := false
	if leapStr := r.URL.Query().Get("leap"); leapStr != "" {
		var err error
		leap, err = strconv.ParseBool(leapStr)
		if err != nil {
			WriteBadRequest(w, fmt.Sprintf("Invalid leap parameter: %s", leapStr))
			return
		}
	}

	ld := lunar.LunarDate{Day: day, Month: month, Year: year, Leap: leap}
	date, err := lunar.LunarToSolar(ld, tz)
	if err != nil {
		h.writeLunarError(ctx, w, err)
		return
	}

	WriteSuccess(w, conversionResult{Solar: date, Lunar: ld})
}

// GetToday handles GET /api/v1/lunar/today
func (h *Handlers) GetToday(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tz, ok := h.queryTz(w, r)
	if !ok {
		return
	}

	// The civil day depends on the zone, so shift UTC before truncating.
	now := time.Now().UTC().Add(time.Duration(tz * float64(time.Hour)))
	date := lunar.SolarDate{Year: now.Year(), Month: int(now.Month()), Day: now.Day()}

	ld, err := lunar.SolarToLunar(date, tz)
	if err != nil {
		h.writeLunarError(ctx, w, err)
		return
	}

	occs, err := h.resolver.ResolveDate(ctx, date)
	if err != nil {
		h.logger.Warn("festival lookup for today failed", slog.Any("error", err))
		// Conversion still worth returning without festivals.
		occs = nil
	}

	WriteSuccess(w, map[string]interface{}{
		"solar":     date,
		"lunar":     ld,
		"festivals": occs,
	})
}

// GetYear handles GET /api/v1/years/{year}
func (h *Handlers) GetYear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	year, ok := h.pathInt(w, r, "year")
	if !ok {
		return
	}
	tz, ok := h.queryTz(w, r)
	if !ok {
		return
	}

	months, err := lunar.YearMonths(year, tz)
	if err != nil {
		h.writeLunarError(ctx, w, err)
		return
	}

	info := yearInfo{Year: year, Months: make([]monthInfo, 0, len(months))}
	for _, m := range months {
		if m.Leap {
			info.LeapMonth = m.Number
		}
		info.Months = append(info.Months, monthInfo{
			Number: m.Number,
			Leap:   m.Leap,
			Days:   m.Days,
			Starts: m.Start.Solar(),
		})
	}

	WriteSuccess(w, info)
}

// ListFestivals handles GET /api/v1/festivals
func (h *Handlers) ListFestivals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	fests, err := h.db.ListFestivals(ctx)
	if err != nil {
		h.logger.Error("failed to list festivals", slog.Any("error", err))
		WriteInternalError(w, "Failed to retrieve festivals")
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"festivals": fests,
		"count":     len(fests),
	})
}

// GetYearFestivals handles GET /api/v1/festivals/{year}
func (h *Handlers) GetYearFestivals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	year, ok := h.pathInt(w, r, "year")
	if !ok {
		return
	}

	occs, err := h.resolver.ResolveYear(ctx, year)
	if err != nil {
		if errors.Is(err, lunar.ErrYearOutOfRange) {
			WriteOutOfRange(w, err.Error())
			return
		}
		h.logger.Error("failed to resolve festivals",
			slog.Int("year", year),
			slog.Any("error", err))
		WriteInternalError(w, "Failed to resolve festivals")
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"year":        year,
		"occurrences": occs,
	})
}

// GetDateFestivals handles GET /api/v1/festivals/date/{YYYY-MM-DD}
func (h *Handlers) GetDateFestivals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dateStr := chi.URLParam(r, "date")
	parsed, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid date format: %s. Use YYYY-MM-DD", dateStr))
		return
	}
	date := lunar.SolarDate{Year: parsed.Year(), Month: int(parsed.Month()), Day: parsed.Day()}

	occs, err := h.resolver.ResolveDate(ctx, date)
	if err != nil {
		h.writeLunarError(ctx, w, err)
		return
	}

	ld, _ := lunar.SolarToLunar(date, h.cfg.TimezoneOffset)
	WriteSuccess(w, map[string]interface{}{
		"solar":     date,
		"lunar":     ld,
		"festivals": occs,
	})
}

// CreateFestival handles POST /api/v1/festivals
func (h *Handlers) CreateFestival(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Name            string `json:"name"`
		Calendar        string `json:"calendar"`
		Month           int    `json:"month"`
		Day             int    `json:"day"`
		IsPublicHoliday bool   `json:"is_public_holiday"`
		Notes           string `json:"notes,omitempty"`
	}

	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	fest := &database.Festival{
		Name:            req.Name,
		Calendar:        database.Calendar(req.Calendar),
		Month:           req.Month,
		Day:             req.Day,
		IsPublicHoliday: req.IsPublicHoliday,
	}
	if req.Notes != "" {
		fest.Notes = &req.Notes
	}

	if err := fest.Validate(); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	if err := h.db.UpsertFestival(ctx, fest); err != nil {
		h.logger.Error("failed to store festival",
			slog.String("name", fest.Name),
			slog.Any("error", err))
		WriteInternalError(w, "Failed to store festival")
		return
	}

	stored, err := h.db.GetFestivalByName(ctx, fest.Name)
	if err != nil {
		h.logger.Error("failed to reload stored festival", slog.Any("error", err))
		WriteInternalError(w, "Failed to store festival")
		return
	}

	WriteSuccess(w, stored)
}

// DeleteFestival handles DELETE /api/v1/festivals/{id}
func (h *Handlers) DeleteFestival(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.pathInt(w, r, "id")
	if !ok {
		return
	}

	if err := h.db.DeleteFestival(ctx, int64(id)); err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, "Festival not found")
			return
		}
		h.logger.Error("failed to delete festival",
			slog.Int("id", id),
			slog.Any("error", err))
		WriteInternalError(w, "Failed to delete festival")
		return
	}

	WriteSuccess(w, map[string]string{"message": "Festival deleted"})
}

// pathSolarDate reads {year}/{month}/{day} path segments as a solar date.
func (h *Handlers) pathSolarDate(w http.ResponseWriter, r *http.Request) (lunar.SolarDate, bool) {
	year, ok := h.pathInt(w, r, "year")
	if !ok {
		return lunar.SolarDate{}, false
	}
	month, ok := h.pathInt(w, r, "month")
	if !ok {
		return lunar.SolarDate{}, false
	}
	day, ok := h.pathInt(w, r, "day")
	if !ok {
		return lunar.SolarDate{}, false
	}
	return lunar.SolarDate{Year: year, Month: month, Day: day}, true
}

// pathInt reads one integer path parameter, writing a 400 on failure.
func (h *Handlers) pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := chi.URLParam(r, name)
	v, err := strconv.Atoi(raw)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid %s: %s", name, raw))
		return 0, false
	}
	return v, true
}

// queryTz reads the optional tz query parameter, defaulting to the
// configured zone.
func (h *Handlers) queryTz(w http.ResponseWriter, r *http.Request) (float64, bool) {
	raw := r.URL.Query().Get("tz")
	if raw == "" {
		return h.cfg.TimezoneOffset, true
	}
	tz, err := strconv.ParseFloat(raw, 64)
	if err != nil || tz < -12 || tz > 14 {
		WriteBadRequest(w, fmt.Sprintf("Invalid tz: %s. Use an offset in hours between -12 and 14", raw))
		return 0, false
	}
	return tz, true
}

// writeLunarError maps conversion errors onto HTTP statuses. A malformed
// date is the caller's mistake, a year outside the supported span is a
// well formed request the tables cannot answer.
func (h *Handlers) writeLunarError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lunar.ErrInvalidDate), errors.Is(err, lunar.ErrInvalidLunarDate):
		WriteBadRequest(w, err.Error())
	case errors.Is(err, lunar.ErrYearOutOfRange):
		WriteOutOfRange(w, err.Error())
	default:
		logger.Error(ctx, "conversion failed", err)
		WriteInternalError(w, "Failed to convert date")
	}
}

// decodeJSON decodes JSON request body.
func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("request body is empty")
	}
	defer r.Body.Close()

	return json.NewDecoder(r.Body).Decode(v)
}
