package services

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"html"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
)

// ===== QUESTION BANK =====

func docx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t xml:space="preserve">` + html.EscapeString(p) + `</w:t></w:r></w:p>`)
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`))
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestTestSet_AddQuestion(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := NewTestSetService(env.deps)

	set, err := svc.Create(ctx, &models.TestSetCreateRequest{Name: "Bank"}, "teacher-1")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	req := &models.QuestionCreateRequest{
		Number: 1,
		Text:   "Gipoteza nima?",
		Answers: []models.AnswerCreateRequest{
			{Text: "Taxmin", IsCorrect: true}, {Text: "Xulosa"}, {Text: "Natija"}, {Text: "Manba"},
		},
	}
	q, err := svc.AddQuestion(ctx, set.ID, req)
	if err != nil {
		t.Fatalf("AddQuestion() error = %v", err)
	}
	if q.Answers[2].Letter != "C" || q.CorrectAnswerID() != q.Answers[0].ID {
		t.Errorf("question = %+v", q)
	}

	var rule *BusinessRuleError
	if _, err := svc.AddQuestion(ctx, set.ID, req); !errors.As(err, &rule) || rule.Rule != "unique_question_number" {
		t.Errorf("duplicate number error = %v, want unique_question_number", err)
	}

	req.Number = 2
	req.Answers[1].IsCorrect = true
	if _, err := svc.AddQuestion(ctx, set.ID, req); err == nil {
		t.Error("two correct answers must be rejected")
	}

	full, err := svc.GetWithQuestions(ctx, set.ID)
	if err != nil {
		t.Fatalf("GetWithQuestions() error = %v", err)
	}
	if full.QuestionCount != 1 {
		t.Errorf("QuestionCount = %d, want 1", full.QuestionCount)
	}
}

func TestTestSet_ImportDocxReplacesQuestions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	set := env.repo.seedTestSet(5)
	svc := NewTestSetService(env.deps)

	data := docx(t,
		"## 1-savol", "Ilmiy metod nima?", "A) Usul", "B) Natija", "C) Taxmin", "D) Manba", "Javob: A",
		"## 2-savol", "Tajriba nima?", "A) Fikr", "B) Sinov", "C) Xato", "D) Reja", "Javob: B",
	)
	res, err := svc.ImportDocx(ctx, set.ID, data)
	if err != nil {
		t.Fatalf("ImportDocx() error = %v", err)
	}
	if res.Imported != 2 {
		t.Errorf("Imported = %d, want 2", res.Imported)
	}
	if n, _ := env.repo.TestSet().CountQuestions(ctx, set.ID); n != 2 {
		t.Errorf("bank size = %d, want 2", n)
	}
}

func TestTestSet_ImportDocxRejectsWholeDocument(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	set := env.repo.seedTestSet(5)
	svc := NewTestSetService(env.deps)

	tests := map[string][]byte{
		"not a zip": []byte("plain text"),
		"missing answer key": docx(t,
			"## 1-savol", "Savol", "A) a", "B) b", "C) c", "D) d", "Javob: A",
			"## 2-savol", "Savol", "A) a", "B) b", "C) c", "D) d",
		),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.ImportDocx(ctx, set.ID, data); !errors.Is(err, ErrInvalidDocument) {
				t.Fatalf("ImportDocx() error = %v, want ErrInvalidDocument", err)
			}
			if n, _ := env.repo.TestSet().CountQuestions(ctx, set.ID); n != 5 {
				t.Errorf("bank size = %d, want untouched 5", n)
			}
		})
	}

	if _, err := svc.ImportDocx(ctx, 999, tests["not a zip"]); !errors.Is(err, ErrTestSetNotFound) {
		t.Errorf("missing set error = %v, want ErrTestSetNotFound", err)
	}
}

// ===== EXPORT =====

func TestExport_CourseResults(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	course := env.repo.seedCourse(1, nil)
	env.repo.seedUser("u1")
	passedResult(env, "u1", course.ID)
	_ = env.repo.Result().CreateCourseResult(ctx, &models.UserTestResult{UserID: "u1", CourseID: course.ID, Percentage: 40, CompletedAt: env.now})

	data, err := NewExportService(env.deps).ExportCourseResults(ctx, course.ID)
	if err != nil {
		t.Fatalf("ExportCourseResults() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(course.Name)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "Result ID" || rows[1][2] != "Ali Valiyev" || rows[1][7] != "Ha" || rows[2][7] != "Yo'q" {
		t.Errorf("rows = %v", rows)
	}

	if _, err := NewExportService(env.deps).ExportCourseResults(ctx, 999); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("missing course error = %v", err)
	}
}

func TestExport_AssessmentResults(t *testing.T) {
	ctx := context.Background()
	env, svc, bank := newAssessmentFixture(t, 3)
	if _, err := svc.Submit(ctx, "u1", &models.AssessmentTestSubmitRequest{Answers: answersFor(bank, 2)}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	data, err := NewExportService(env.deps).ExportAssessmentResults(ctx)
	if err != nil {
		t.Fatalf("ExportAssessmentResults() error = %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Saralash")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 2 || rows[1][4] != models.DefaultAssessmentTitle || rows[1][7] != "66.67" {
		t.Errorf("rows = %v", rows)
	}
}

func TestTruncateSheetName(t *testing.T) {
	if got := truncateSheetName("Kurs: 1/2"); strings.ContainsAny(got, ":/") {
		t.Errorf("truncateSheetName() = %q", got)
	}
	if got := truncateSheetName(strings.Repeat("a", 40)); len([]rune(got)) != 31 {
		t.Errorf("len = %d, want 31", len([]rune(got)))
	}
}

// ===== PROFILE =====

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestProfile_PhotoRoundTripAndCertificateAvatar(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	course := env.repo.seedCourse(1, nil)
	env.repo.seedUser("u1")
	profiles := NewProfileService(env.deps, NewProgressService(env.deps))

	if _, err := profiles.GetPhoto(ctx, "u1"); !errors.Is(err, ErrPhotoNotFound) {
		t.Fatalf("GetPhoto() error = %v, want ErrPhotoNotFound", err)
	}
	if err := profiles.UploadPhoto(ctx, "u1", []byte("GIF89a not supported")); !errors.Is(err, ErrInvalidPhoto) {
		t.Fatalf("UploadPhoto() error = %v, want ErrInvalidPhoto", err)
	}
	if err := profiles.UploadPhoto(ctx, "u1", pngBytes(t, 400, 300)); err != nil {
		t.Fatalf("UploadPhoto() error = %v", err)
	}
	if photo, err := profiles.GetPhoto(ctx, "u1"); err != nil || len(photo) == 0 {
		t.Fatalf("GetPhoto() = %d bytes, %v", len(photo), err)
	}

	if _, err := NewCertificateService(env.deps).IssueForResult(ctx, passedResult(env, "u1", course.ID)); err != nil {
		t.Fatalf("IssueForResult() error = %v", err)
	}
	if env.renderer.calls[0].Photo == nil {
		t.Error("certificate must embed the uploaded photo")
	}

	summary, err := profiles.GetSummary(ctx, "u1")
	if err != nil {
		t.Fatalf("GetSummary() error = %v", err)
	}
	if summary.CertificateCount != 1 {
		t.Errorf("CertificateCount = %d, want 1", summary.CertificateCount)
	}
}

// ===== DASHBOARD =====

func TestDashboard_Stats(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	course := env.repo.seedCourse(1, nil)
	passedResult(env, "u1", course.ID)
	_ = env.repo.Result().CreateCourseResult(ctx, &models.UserTestResult{UserID: "u2", CourseID: course.ID, Percentage: 30})

	stats, err := NewDashboardService(env.deps).GetDashboardStats(ctx)
	if err != nil {
		t.Fatalf("GetDashboardStats() error = %v", err)
	}
	if stats.CourseTest.Submissions != 2 || stats.CourseTest.PassRate != 50 || stats.CourseTest.AveragePercentage != 60 {
		t.Errorf("course metrics = %+v", stats.CourseTest)
	}
	if stats.Assessment.Submissions != 0 || stats.Assessment.PassRate != 0 {
		t.Errorf("assessment metrics = %+v", stats.Assessment)
	}
}

func TestDashboard_TrendsAndPerformance(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := NewDashboardService(env.deps)

	trends, err := svc.GetActivityTrends(ctx, "week")
	if err != nil {
		t.Fatalf("GetActivityTrends() error = %v", err)
	}
	if trends[0].Date != "2025-03-08" || trends[0].AveragePercentage != 66.7 {
		t.Errorf("trend = %+v", trends[0])
	}

	var rule *BusinessRuleError
	if _, err := svc.GetActivityTrends(ctx, "year"); !errors.As(err, &rule) {
		t.Errorf("bad period error = %v, want BusinessRuleError", err)
	}

	perf, err := svc.GetCoursePerformance(ctx, 0)
	if err != nil {
		t.Fatalf("GetCoursePerformance() error = %v", err)
	}
	if perf[0].PassRate != 33.3 {
		t.Errorf("PassRate = %v, want 33.3", perf[0].PassRate)
	}
}

// ===== SERVICE MANAGER =====

func TestServiceManager_Lifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	sm := NewDefaultServiceManager(env.deps)

	func() {
		defer func() {
			if recover() == nil {
				t.Error("getter before Initialize must panic")
			}
		}()
		sm.Course()
	}()

	if err := sm.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if sm.Course() == nil || sm.CourseTest() == nil || sm.Dashboard() == nil || sm.Export() == nil {
		t.Error("services must be available after Initialize")
	}
	if err := sm.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
	if err := sm.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	if err := sm.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() after Shutdown must fail")
	}
}

func TestServiceManager_RequiresStore(t *testing.T) {
	env := newTestEnv()
	env.deps.Store = nil
	if err := NewDefaultServiceManager(env.deps).Initialize(context.Background()); err == nil {
		t.Error("Initialize() without a store must fail")
	}
}
