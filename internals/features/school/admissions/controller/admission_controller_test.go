package controller_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolfee_backend/internals/databases/inmem"
	academicModel "schoolfee_backend/internals/features/school/academics/model"
	academicService "schoolfee_backend/internals/features/school/academics/service"
	"schoolfee_backend/internals/features/school/admissions/route"
	"schoolfee_backend/internals/features/school/admissions/service"
	helperAuth "schoolfee_backend/internals/helpers/auth"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type fixture struct {
	app   *fiber.App
	class academicModel.Class
	term  academicModel.AcademicTerm
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	db := inmem.New()
	academics := academicService.NewService(inmem.NewAcademicStore(db))
	svc := service.NewService(inmem.NewAdmissionStore(db), academics, nil, nil)

	f := fixture{}
	f.class = academicModel.Class{ClassName: "Grade 1", ClassLevel: 1, ClassIsActive: true}
	require.NoError(t, academics.CreateClass(ctx, &f.class))
	f.term = academicModel.AcademicTerm{
		AcademicTermName:      "Term 1",
		AcademicTermYear:      2025,
		AcademicTermStartDate: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		AcademicTermEndDate:   time.Date(2025, 4, 4, 0, 0, 0, 0, time.UTC),
		AcademicTermIsActive:  true,
	}
	require.NoError(t, academics.CreateTerm(ctx, &f.term))

	f.app = fiber.New()
	route.AdmissionPublicRoutes(f.app.Group("/api/public"), svc)
	admin := f.app.Group("/api/a", func(c *fiber.Ctx) error {
		c.Locals(helperAuth.LocStaffSubject, "bursar-7")
		return c.Next()
	})
	route.AdmissionAdminRoutes(admin, svc)
	return f
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func (f fixture) submit(t *testing.T) string {
	t.Helper()
	code, env := do(t, f.app, http.MethodPost, "/api/public/admissions",
		`{"child_full_name":"Amina Hassan","guardian_name":"Fatuma Hassan","guardian_email":"fatuma@example.com","child_date_of_birth":"2019-03-02"}`)
	require.Equal(t, fiber.StatusCreated, code)
	var out struct {
		AdmissionID     string `json:"admission_id"`
		AdmissionStatus string `json:"admission_status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, "pending", out.AdmissionStatus)
	return out.AdmissionID
}

func TestSubmitValidation(t *testing.T) {
	f := setup(t)
	code, _ := do(t, f.app, http.MethodPost, "/api/public/admissions", `{"child_full_name":"Amina","guardian_name":"X","guardian_email":"not-an-email"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)
}

func TestApproveThenDecideAgainConflicts(t *testing.T) {
	f := setup(t)
	id := f.submit(t)

	body := fmt.Sprintf(`{"class_id":%q,"term_id":%q}`, f.class.ClassID, f.term.AcademicTermID)
	code, env := do(t, f.app, http.MethodPost, "/api/a/admissions/"+id+"/approve", body)
	require.Equal(t, fiber.StatusOK, code, env.Message)
	var out struct {
		Admission struct {
			AdmissionProcessedBy string `json:"admission_processed_by"`
		} `json:"admission"`
		Student struct {
			StudentNo string `json:"student_no"`
		} `json:"student"`
		Enrollment struct {
			Status string `json:"term_enrollment_status"`
		} `json:"enrollment"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, "bursar-7", out.Admission.AdmissionProcessedBy)
	assert.Regexp(t, `^STU\d{10}$`, out.Student.StudentNo)
	assert.Equal(t, "enrolled", out.Enrollment.Status)

	code, _ = do(t, f.app, http.MethodPost, "/api/a/admissions/"+id+"/reject", `{"remarks":"too late"}`)
	assert.Equal(t, fiber.StatusConflict, code)
	code, _ = do(t, f.app, http.MethodPost, "/api/a/admissions/"+id+"/approve", body)
	assert.Equal(t, fiber.StatusConflict, code)
}

func TestRejectNeedsRemarks(t *testing.T) {
	f := setup(t)
	id := f.submit(t)

	code, _ := do(t, f.app, http.MethodPost, "/api/a/admissions/"+id+"/reject", `{}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)

	code, _ = do(t, f.app, http.MethodPost, "/api/a/admissions/"+id+"/reject", `{"remarks":"class is full"}`)
	assert.Equal(t, fiber.StatusOK, code)

	code, env := do(t, f.app, http.MethodGet, "/api/a/admissions?status=rejected", "")
	require.Equal(t, fiber.StatusOK, code)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	assert.Len(t, rows, 1)
}

func TestApproveErrors(t *testing.T) {
	f := setup(t)
	id := f.submit(t)

	code, _ := do(t, f.app, http.MethodPost, "/api/a/admissions/"+id+"/approve",
		fmt.Sprintf(`{"class_id":%q,"term_id":%q,"with_invoice":true}`, f.class.ClassID, f.term.AcademicTermID))
	assert.Equal(t, fiber.StatusServiceUnavailable, code)

	code, _ = do(t, f.app, http.MethodPost, "/api/a/admissions/"+id+"/approve",
		fmt.Sprintf(`{"class_id":%q,"term_id":%q}`, f.term.AcademicTermID, f.term.AcademicTermID))
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)

	code, _ = do(t, f.app, http.MethodGet, "/api/a/admissions/not-a-uuid", "")
	assert.Equal(t, fiber.StatusBadRequest, code)
	code, _ = do(t, f.app, http.MethodGet, "/api/a/admissions/00000000-0000-0000-0000-000000000001", "")
	assert.Equal(t, fiber.StatusNotFound, code)
}
