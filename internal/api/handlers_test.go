package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/junkeythong/amlichvietnam/internal/config"
	"github.com/junkeythong/amlichvietnam/internal/database"
	"github.com/junkeythong/amlichvietnam/internal/festival"
	"github.com/junkeythong/amlichvietnam/lunar"
)

// =============================================================================
// TEST SETUP HELPERS
// =============================================================================

// testEnv sets up a complete test environment with database, config,
// handlers, and the assembled router.
type testEnv struct {
	db      *database.DB
	cfg     *config.Config
	router  http.Handler
	apiKey  string
	cleanup func()
}

// setupTest creates a fresh test environment
func setupTest(t *testing.T) *testEnv {
	t.Helper()

	// Create in-memory database
	dbCfg := database.Config{
		Path:            ":memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // Quiet during tests
	}))

	db, err := database.Open(dbCfg, logger)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	// Run migrations
	ctx := context.Background()
	if _, err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	apiKey := "test-api-key-32-characters-minimum-len"
	cfg := &config.Config{
		Port:           8080,
		Env:            config.EnvDevelopment,
		DatabasePath:   ":memory:",
		APIKey:         apiKey,
		LogLevel:       "error",
		LogFormat:      "text",
		TimezoneOffset: lunar.VietnamOffset,
	}

	handlers := NewHandlers(db, cfg, logger)
	router := SetupRoutes(handlers, cfg, logger)

	return &testEnv{
		db:     db,
		cfg:    cfg,
		router: router,
		apiKey: apiKey,
		cleanup: func() {
			db.Close()
		},
	}
}

// seedFestivals loads the standard holidays used in lookup tests.
func (env *testEnv) seedFestivals(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	notes := "Rằm tháng Tám"
	fests := []*database.Festival{
		{Name: "Tết Nguyên Đán", Calendar: database.CalendarLunar, Month: 1, Day: 1, IsPublicHoliday: true},
		{Name: "Giỗ tổ Hùng Vương", Calendar: database.CalendarLunar, Month: 3, Day: 10, IsPublicHoliday: true},
		{Name: "Tết Trung Thu", Calendar: database.CalendarLunar, Month: 8, Day: 15, Notes: &notes},
		{Name: "Quốc khánh", Calendar: database.CalendarSolar, Month: 9, Day: 2, IsPublicHoliday: true},
	}
	for _, f := range fests {
		if err := env.db.UpsertFestival(ctx, f); err != nil {
			t.Fatalf("seed festival %s: %v", f.Name, err)
		}
	}
}

// makeRequest is a helper to make HTTP requests with optional API key
func makeRequest(method, path string, body interface{}, apiKey string) *http.Request {
	var bodyReader io.Reader
	if body != nil {
		jsonData, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(jsonData)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")

	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	return req
}

// do runs a request through the full router.
func (env *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

// parseResponse parses JSON response
func parseResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v, body: %s", err, rr.Body.String())
	}
}

// =============================================================================
// CONVERSION ENDPOINT TESTS
// =============================================================================

func TestHealthCheck(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	rr := env.do(makeRequest("GET", "/health", nil, ""))

	if rr.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	parseResponse(t, rr, &resp)

	if !resp.Success {
		t.Error("Success = false, want true")
	}
	if resp.Data["status"] != "healthy" {
		t.Errorf("status = %q, want %q", resp.Data["status"], "healthy")
	}
}

func TestConvertSolar_Tet(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	rr := env.do(makeRequest("GET", "/api/v1/solar/2026/2/17", nil, ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp struct {
		Success bool             `json:"success"`
		Data    conversionResult `json:"data"`
	}
	parseResponse(t, rr, &resp)

	want := lunar.LunarDate{Day: 1, Month: 1, Year: 2026}
	if resp.Data.Lunar != want {
		t.Errorf("Lunar = %v, want %v", resp.Data.Lunar, want)
	}
}

func TestConvertSolar_InvalidDate(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	for _, path := range []string{
		"/api/v1/solar/2025/2/30",
		"/api/v1/solar/2025/13/1",
		"/api/v1/solar/2025/0/10",
		"/api/v1/solar/abc/1/1",
	} {
		rr := env.do(makeRequest("GET", path, nil, ""))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want %d", path, rr.Code, http.StatusBadRequest)
		}
	}
}

func TestConvertSolar_OutOfRange(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	rr := env.do(makeRequest("GET", "/api/v1/solar/1799/12/31", nil, ""))

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Status = %d, want %d", rr.Code, http.StatusUnprocessableEntity)
	}

	var resp struct {
		Success bool       `json:"success"`
		Error   *ErrorInfo `json:"error"`
	}
	parseResponse(t, rr, &resp)

	if resp.Success {
		t.Error("Success = true, want false")
	}
	if resp.Error == nil || resp.Error.Code != "OUT_OF_RANGE" {
		t.Errorf("Error = %+v, want code OUT_OF_RANGE", resp.Error)
	}
}

func TestConvertSolar_ZoneParameter(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	// 1985-01-21 starts a month at UTC+7 but not at UTC+8, so the two
	// zones disagree about Tết.
	rr := env.do(makeRequest("GET", "/api/v1/solar/1985/1/21", nil, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, body: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Data conversionResult `json:"data"`
	}
	parseResponse(t, rr, &resp)
	if want := (lunar.LunarDate{Day: 1, Month: 1, Year: 1985}); resp.Data.Lunar != want {
		t.Errorf("tz=7 Lunar = %v, want %v", resp.Data.Lunar, want)
	}

	rr = env.do(makeRequest("GET", "/api/v1/solar/1985/1/21?tz=8", nil, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, body: %s", rr.Code, rr.Body.String())
	}
	parseResponse(t, rr, &resp)
	if want := (lunar.LunarDate{Day: 1, Month: 12, Year: 1984}); resp.Data.Lunar != want {
		t.Errorf("tz=8 Lunar = %v, want %v", resp.Data.Lunar, want)
	}
}

func TestConvertSolar_InvalidZone(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	for _, path := range []string{
		"/api/v1/solar/2025/1/1?tz=99",
		"/api/v1/solar/2025/1/1?tz=abc",
	} {
		rr := env.do(makeRequest("GET", path, nil, ""))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want %d", path, rr.Code, http.StatusBadRequest)
		}
	}
}

func TestConvertLunar_Tet(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	rr := env.do(makeRequest("GET", "/api/v1/lunar/2026/1/1", nil, ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp struct {
		Data conversionResult `json:"data"`
	}
	parseResponse(t, rr, &resp)

	want := lunar.SolarDate{Year: 2026, Month: 2, Day: 17}
	if resp.Data.Solar != want {
		t.Errorf("Solar = %v, want %v", resp.Data.Solar, want)
	}
}

func TestConvertLunar_LeapMonth(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	rr := env.do(makeRequest("GET", "/api/v1/lunar/2004/2/1?leap=true", nil, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, body: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Data conversionResult `json:"data"`
	}
	parseResponse(t, rr, &resp)
	if want := (lunar.SolarDate{Year: 2004, Month: 3, Day: 21}); resp.Data.Solar != want {
		t.Errorf("Solar = %v, want %v", resp.Data.Solar, want)
	}

	// 2024 has no leap month at all.
	rr = env.do(makeRequest("GET", "/api/v1/lunar/2024/2/1?leap=true", nil, ""))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("leap in non-leap year: status = %d, want %d", rr.Code, http.StatusBadRequest)
	}

	rr = env.do(makeRequest("GET", "/api/v1/lunar/2004/2/1?leap=sometimes", nil, ""))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("malformed leap flag: status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestGetToday(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	rr := env.do(makeRequest("GET", "/api/v1/lunar/today", nil, ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Solar lunar.SolarDate `json:"solar"`
			Lunar lunar.LunarDate `json:"lunar"`
		} `json:"data"`
	}
	parseResponse(t, rr, &resp)

	thisYear := time.Now().UTC().Year()
	if resp.Data.Solar.Year < thisYear-1 || resp.Data.Solar.Year > thisYear+1 {
		t.Errorf("Solar.Year = %d, want near %d", resp.Data.Solar.Year, thisYear)
	}
	if resp.Data.Lunar.Month < 1 || resp.Data.Lunar.Month > 12 {
		t.Errorf("Lunar.Month = %d, want 1..12", resp.Data.Lunar.Month)
	}
}

func TestGetYear_LeapYear(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	rr := env.do(makeRequest("GET", "/api/v1/years/2004", nil, ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp struct {
		Data yearInfo `json:"data"`
	}
	parseResponse(t, rr, &resp)

	if resp.Data.Year != 2004 {
		t.Errorf("Year = %d, want 2004", resp.Data.Year)
	}
	if len(resp.Data.Months) != 13 {
		t.Errorf("len(Months) = %d, want 13", len(resp.Data.Months))
	}
	if resp.Data.LeapMonth != 2 {
		t.Errorf("LeapMonth = %d, want 2", resp.Data.LeapMonth)
	}
	if got := resp.Data.Months[0].Number; got != 1 {
		t.Errorf("Months[0].Number = %d, want 1", got)
	}
	for _, m := range resp.Data.Months {
		if m.Days != 29 && m.Days != 30 {
			t.Errorf("month %d has %d days", m.Number, m.Days)
		}
	}
}

func TestGetYear_OutOfRange(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	rr := env.do(makeRequest("GET", "/api/v1/years/2200", nil, ""))
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusUnprocessableEntity)
	}
}

// =============================================================================
// FESTIVAL ENDPOINT TESTS
// =============================================================================

func TestListFestivals(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()
	env.seedFestivals(t)

	rr := env.do(makeRequest("GET", "/api/v1/festivals", nil, ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Festivals []database.Festival `json:"festivals"`
			Count     int                 `json:"count"`
		} `json:"data"`
	}
	parseResponse(t, rr, &resp)

	if resp.Data.Count != 4 {
		t.Errorf("Count = %d, want 4", resp.Data.Count)
	}
}

func TestGetYearFestivals(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()
	env.seedFestivals(t)

	rr := env.do(makeRequest("GET", "/api/v1/festivals/2025", nil, ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp struct {
		Data struct {
			Year        int                   `json:"year"`
			Occurrences []festival.Occurrence `json:"occurrences"`
		} `json:"data"`
	}
	parseResponse(t, rr, &resp)

	if len(resp.Data.Occurrences) != 4 {
		t.Fatalf("len(Occurrences) = %d, want 4", len(resp.Data.Occurrences))
	}
	first := resp.Data.Occurrences[0]
	if first.Festival.Name != "Tết Nguyên Đán" {
		t.Errorf("first occurrence = %s, want Tết Nguyên Đán", first.Festival.Name)
	}
	if want := (lunar.SolarDate{Year: 2025, Month: 1, Day: 29}); first.Solar != want {
		t.Errorf("Tết 2025 = %v, want %v", first.Solar, want)
	}
}

func TestGetYearFestivals_OutOfRange(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	rr := env.do(makeRequest("GET", "/api/v1/festivals/1799", nil, ""))
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusUnprocessableEntity)
	}
}

func TestGetDateFestivals(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()
	env.seedFestivals(t)

	rr := env.do(makeRequest("GET", "/api/v1/festivals/date/2026-02-17", nil, ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp struct {
		Data struct {
			Festivals []festival.Occurrence `json:"festivals"`
		} `json:"data"`
	}
	parseResponse(t, rr, &resp)

	if len(resp.Data.Festivals) != 1 || resp.Data.Festivals[0].Festival.Name != "Tết Nguyên Đán" {
		t.Errorf("festivals on 2026-02-17 = %v, want Tết Nguyên Đán", resp.Data.Festivals)
	}

	rr = env.do(makeRequest("GET", "/api/v1/festivals/date/17-02-2026", nil, ""))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("malformed date: status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestCreateFestival_RequiresKey(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	body := map[string]interface{}{
		"name":     "Tết Đoan Ngọ",
		"calendar": "lunar",
		"month":    5,
		"day":      5,
	}

	rr := env.do(makeRequest("POST", "/api/v1/festivals", body, ""))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("no key: status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	rr = env.do(makeRequest("POST", "/api/v1/festivals", body, "wrong-key"))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("wrong key: status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestCreateFestival_Success(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	body := map[string]interface{}{
		"name":              "Tết Đoan Ngọ",
		"calendar":          "lunar",
		"month":             5,
		"day":               5,
		"is_public_holiday": false,
		"notes":             "Diệt sâu bọ",
	}

	rr := env.do(makeRequest("POST", "/api/v1/festivals", body, env.apiKey))

	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp struct {
		Success bool              `json:"success"`
		Data    database.Festival `json:"data"`
	}
	parseResponse(t, rr, &resp)

	if resp.Data.ID == 0 {
		t.Error("ID = 0, want assigned")
	}
	if resp.Data.Name != "Tết Đoan Ngọ" {
		t.Errorf("Name = %q, want %q", resp.Data.Name, "Tết Đoan Ngọ")
	}
	if resp.Data.Notes == nil || *resp.Data.Notes != "Diệt sâu bọ" {
		t.Errorf("Notes = %v, want Diệt sâu bọ", resp.Data.Notes)
	}
}

func TestCreateFestival_RejectsInvalid(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	cases := []map[string]interface{}{
		{"name": "", "calendar": "lunar", "month": 1, "day": 1},
		{"name": "X", "calendar": "julian", "month": 1, "day": 1},
		{"name": "X", "calendar": "lunar", "month": 13, "day": 1},
		{"name": "X", "calendar": "lunar", "month": 1, "day": 31},
	}
	for i, body := range cases {
		rr := env.do(makeRequest("POST", "/api/v1/festivals", body, env.apiKey))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("case %d: status = %d, want %d, body: %s", i, rr.Code, http.StatusBadRequest, rr.Body.String())
		}
	}
}

func TestDeleteFestival(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()
	env.seedFestivals(t)

	ctx := context.Background()
	fest, err := env.db.GetFestivalByName(ctx, "Tết Trung Thu")
	if err != nil {
		t.Fatalf("get seeded festival: %v", err)
	}

	path := fmt.Sprintf("/api/v1/festivals/%d", fest.ID)

	rr := env.do(makeRequest("DELETE", path, nil, ""))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("no key: status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	rr = env.do(makeRequest("DELETE", path, nil, env.apiKey))
	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	// Second delete finds nothing
	rr = env.do(makeRequest("DELETE", path, nil, env.apiKey))
	if rr.Code != http.StatusNotFound {
		t.Errorf("second delete: status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

// =============================================================================
// MIDDLEWARE TESTS
// =============================================================================

func TestRequestIDHeader(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	rr := env.do(makeRequest("GET", "/health", nil, ""))
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}

	// A caller-supplied ID is echoed back.
	req := makeRequest("GET", "/health", nil, "")
	req.Header.Set("X-Request-ID", "caller-id-123")
	rr = env.do(req)
	if got := rr.Header().Get("X-Request-ID"); got != "caller-id-123" {
		t.Errorf("X-Request-ID = %q, want caller-id-123", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	req := httptest.NewRequest("OPTIONS", "/api/v1/solar/2025/1/1", nil)
	rr := env.do(req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Access-Control-Allow-Origin not set")
	}
}

// =============================================================================
// INTEGRATION TESTS
// =============================================================================

func TestFestivalLifecycle(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	// 1. Create a festival through the API
	body := map[string]interface{}{
		"name":              "Lễ Vu Lan",
		"calendar":          "lunar",
		"month":             7,
		"day":               15,
		"is_public_holiday": false,
	}
	rr := env.do(makeRequest("POST", "/api/v1/festivals", body, env.apiKey))
	if rr.Code != http.StatusOK {
		t.Fatalf("create failed: %d, body: %s", rr.Code, rr.Body.String())
	}

	var createResp struct {
		Data database.Festival `json:"data"`
	}
	parseResponse(t, rr, &createResp)
	festID := createResp.Data.ID

	// 2. It resolves to a solar date
	rr = env.do(makeRequest("GET", "/api/v1/festivals/2025", nil, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("resolve failed: %d", rr.Code)
	}
	var yearResp struct {
		Data struct {
			Occurrences []festival.Occurrence `json:"occurrences"`
		} `json:"data"`
	}
	parseResponse(t, rr, &yearResp)
	if len(yearResp.Data.Occurrences) != 1 {
		t.Fatalf("occurrences = %d, want 1", len(yearResp.Data.Occurrences))
	}
	occ := yearResp.Data.Occurrences[0]
	if occ.Solar.Year != 2025 {
		t.Errorf("occurrence year = %d, want 2025", occ.Solar.Year)
	}
	if occ.Lunar.Month != 7 || occ.Lunar.Day != 15 {
		t.Errorf("occurrence lunar = %v, want month 7 day 15", occ.Lunar)
	}

	// 3. Delete it and verify the catalog is empty again
	rr = env.do(makeRequest("DELETE", fmt.Sprintf("/api/v1/festivals/%d", festID), nil, env.apiKey))
	if rr.Code != http.StatusOK {
		t.Fatalf("delete failed: %d", rr.Code)
	}

	rr = env.do(makeRequest("GET", "/api/v1/festivals", nil, ""))
	var listResp struct {
		Data struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	parseResponse(t, rr, &listResp)
	if listResp.Data.Count != 0 {
		t.Errorf("catalog count after delete = %d, want 0", listResp.Data.Count)
	}
}
