package assignments

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	assignsvc "armory-backend/internal/application/assignments"
	"armory-backend/internal/constants"
	"armory-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAssignmentTest(t *testing.T) (*Handlers, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Station{}, &domain.Employee{}, &domain.Asset{},
		&domain.AssignmentRecord{}, &domain.AssignmentAsset{},
		&domain.RoundEntry{}, &domain.AssignmentEvent{},
	))
	return &Handlers{Service: &assignsvc.Service{DB: db}}, db
}

func newApp(h *Handlers, role string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{
			"user_id":  uuid.New().String(),
			"fullname": "Test Clerk",
			"email":    "clerk@example.com",
			"role":     role,
		})
		return c.Next()
	})
	app.Post("/api/v1/assignments", h.Create)
	app.Get("/api/v1/assignments", h.List)
	app.Get("/api/v1/assignments/:id", h.Get)
	app.Post("/api/v1/assignments/:id/issue", h.Issue)
	app.Post("/api/v1/assignments/:id/consume", h.Consume)
	app.Post("/api/v1/assignments/:id/return", h.Return)
	app.Post("/api/v1/assignments/:id/transfer", h.Transfer)
	app.Post("/api/v1/assignments/:id/approve", h.Approve)
	return app
}

func seedEmployeeAndWeapon(t *testing.T, db *gorm.DB) (domain.Employee, domain.Asset) {
	t.Helper()
	emp := domain.Employee{Fullname: "Able Officer", BadgeNumber: "B-" + uuid.NewString()[:8]}
	require.NoError(t, db.Create(&emp).Error)
	weapon := domain.Asset{AssetType: domain.AssetTypeWeapon, SerialNumber: "SN-" + uuid.NewString()[:8], Model: "AR-15"}
	require.NoError(t, db.Create(&weapon).Error)
	return emp, weapon
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) (int, map[string]interface{}) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	_ = json.Unmarshal(b, &out)
	return resp.StatusCode, out
}

func createRecord(t *testing.T, app *fiber.App, emp domain.Employee, weapon domain.Asset, rounds int) map[string]interface{} {
	t.Helper()
	status, body := postJSON(t, app, "/api/v1/assignments", map[string]interface{}{
		"holder_type": "employee",
		"holder_id":   emp.EmployeeID.String(),
		"assets":      []map[string]interface{}{{"asset_id": weapon.AssetID.String(), "initial_rounds": rounds}},
		"reason":      "initial issue",
		"date":        "2026-08-01",
	})
	require.Equal(t, fiber.StatusCreated, status)
	return body["data"].(map[string]interface{})
}

func TestCreate_Unauthorized(t *testing.T) {
	h, _ := setupAssignmentTest(t)
	app := fiber.New() // no session middleware
	app.Post("/api/v1/assignments", h.Create)

	body, _ := json.Marshal(map[string]interface{}{})
	req := httptest.NewRequest("POST", "/api/v1/assignments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCreate_BadHolder(t *testing.T) {
	h, _ := setupAssignmentTest(t)
	app := newApp(h, constants.Clerk)

	status, _ := postJSON(t, app, "/api/v1/assignments", map[string]interface{}{
		"holder_type": "vehicle",
		"holder_id":   uuid.New().String(),
		"reason":      "x",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestCreate_Success(t *testing.T) {
	h, db := setupAssignmentTest(t)
	app := newApp(h, constants.Clerk)
	emp, weapon := seedEmployeeAndWeapon(t, db)

	data := createRecord(t, app, emp, weapon, 100)
	record := data["record"].(map[string]interface{})
	assert.Equal(t, "employee", record["holder_type"])
	assert.Equal(t, false, record["is_approved"])
	totals := data["totals"].(map[string]interface{})
	assert.Equal(t, float64(100), totals["total_assigned"])
	assert.Equal(t, float64(100), totals["available"])
}

func TestIssueConsume_Flow(t *testing.T) {
	h, db := setupAssignmentTest(t)
	app := newApp(h, constants.Clerk)
	emp, weapon := seedEmployeeAndWeapon(t, db)
	data := createRecord(t, app, emp, weapon, 100)
	record := data["record"].(map[string]interface{})
	id := record["assignment_id"].(string)
	version := int64(record["version"].(float64))

	status, body := postJSON(t, app, "/api/v1/assignments/"+id+"/consume", map[string]interface{}{
		"quantity": 30,
		"shells":   28,
		"reason":   "range day",
		"date":     "2026-08-02",
		"version":  version,
	})
	require.Equal(t, fiber.StatusOK, status)
	out := body["data"].(map[string]interface{})
	totals := out["totals"].(map[string]interface{})
	assert.Equal(t, float64(70), totals["available"])
	assert.Equal(t, false, out["fully_consumed"])
}

func TestConsume_StaleVersionConflict(t *testing.T) {
	h, db := setupAssignmentTest(t)
	app := newApp(h, constants.Clerk)
	emp, weapon := seedEmployeeAndWeapon(t, db)
	data := createRecord(t, app, emp, weapon, 100)
	record := data["record"].(map[string]interface{})
	id := record["assignment_id"].(string)

	status, _ := postJSON(t, app, "/api/v1/assignments/"+id+"/consume", map[string]interface{}{
		"quantity": 10,
		"shells":   10,
		"reason":   "range day",
		"date":     "2026-08-02",
		"version":  99,
	})
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestConsume_OverdrawRejected(t *testing.T) {
	h, db := setupAssignmentTest(t)
	app := newApp(h, constants.Clerk)
	emp, weapon := seedEmployeeAndWeapon(t, db)
	data := createRecord(t, app, emp, weapon, 10)
	record := data["record"].(map[string]interface{})
	id := record["assignment_id"].(string)
	version := int64(record["version"].(float64))

	status, _ := postJSON(t, app, "/api/v1/assignments/"+id+"/consume", map[string]interface{}{
		"quantity": 11,
		"shells":   11,
		"reason":   "range day",
		"date":     "2026-08-02",
		"version":  version,
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestConsume_MalformedDateRejected(t *testing.T) {
	h, db := setupAssignmentTest(t)
	app := newApp(h, constants.Clerk)
	emp, weapon := seedEmployeeAndWeapon(t, db)
	data := createRecord(t, app, emp, weapon, 100)
	record := data["record"].(map[string]interface{})
	id := record["assignment_id"].(string)
	version := int64(record["version"].(float64))

	status, _ := postJSON(t, app, "/api/v1/assignments/"+id+"/consume", map[string]interface{}{
		"quantity": 30,
		"shells":   30,
		"reason":   "range day",
		"date":     "not-a-date",
		"version":  version,
	})
	assert.Equal(t, fiber.StatusBadRequest, status)

	// No entry may land with a substituted date.
	var entries int64
	require.NoError(t, db.Model(&domain.RoundEntry{}).Where("assignment_id = ?", id).Count(&entries).Error)
	assert.Equal(t, int64(1), entries)
}

func TestTransfer_Success(t *testing.T) {
	h, db := setupAssignmentTest(t)
	app := newApp(h, constants.Admin)
	emp, weapon := seedEmployeeAndWeapon(t, db)
	station := domain.Station{Code: "HQ", Name: "Headquarters"}
	require.NoError(t, db.Create(&station).Error)

	data := createRecord(t, app, emp, weapon, 50)
	record := data["record"].(map[string]interface{})
	id := record["assignment_id"].(string)
	version := int64(record["version"].(float64))

	status, body := postJSON(t, app, "/api/v1/assignments/"+id+"/transfer", map[string]interface{}{
		"quantity":    50,
		"holder_type": "station",
		"holder_id":   station.StationID.String(),
		"reason":      "reassignment",
		"date":        "2026-08-03",
		"version":     version,
	})
	require.Equal(t, fiber.StatusOK, status)
	out := body["data"].(map[string]interface{})
	src := out["source"].(map[string]interface{})["totals"].(map[string]interface{})
	dst := out["destination"].(map[string]interface{})["totals"].(map[string]interface{})
	assert.Equal(t, float64(0), src["available"])
	assert.Equal(t, float64(50), dst["available"])
}

func TestApprove_ForbiddenForClerk(t *testing.T) {
	h, db := setupAssignmentTest(t)
	app := newApp(h, constants.Clerk)
	emp, weapon := seedEmployeeAndWeapon(t, db)
	data := createRecord(t, app, emp, weapon, 10)
	record := data["record"].(map[string]interface{})
	id := record["assignment_id"].(string)
	version := int64(record["version"].(float64))

	status, _ := postJSON(t, app, "/api/v1/assignments/"+id+"/approve", map[string]interface{}{
		"comment": "looks right",
		"version": version,
	})
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestApprove_AdminSuccess(t *testing.T) {
	h, db := setupAssignmentTest(t)
	app := newApp(h, constants.Admin)
	emp, weapon := seedEmployeeAndWeapon(t, db)
	data := createRecord(t, app, emp, weapon, 10)
	record := data["record"].(map[string]interface{})
	id := record["assignment_id"].(string)
	version := int64(record["version"].(float64))

	status, body := postJSON(t, app, "/api/v1/assignments/"+id+"/approve", map[string]interface{}{
		"comment": "verified against the register",
		"version": version,
	})
	require.Equal(t, fiber.StatusOK, status)
	out := body["data"].(map[string]interface{})
	rec := out["record"].(map[string]interface{})
	assert.Equal(t, true, rec["is_approved"])
}

func TestGet_InvalidID(t *testing.T) {
	h, _ := setupAssignmentTest(t)
	app := newApp(h, constants.Clerk)

	req := httptest.NewRequest("GET", "/api/v1/assignments/not-a-uuid", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGet_NotFound(t *testing.T) {
	h, _ := setupAssignmentTest(t)
	app := newApp(h, constants.Clerk)

	req := httptest.NewRequest("GET", "/api/v1/assignments/"+uuid.New().String(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestList_ByHolder(t *testing.T) {
	h, db := setupAssignmentTest(t)
	app := newApp(h, constants.Clerk)
	emp, weapon := seedEmployeeAndWeapon(t, db)
	createRecord(t, app, emp, weapon, 10)

	req := httptest.NewRequest("GET", "/api/v1/assignments?holder_type=employee&holder_id="+emp.EmployeeID.String(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	b, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	records := out["data"].([]interface{})
	assert.Len(t, records, 1)
}
