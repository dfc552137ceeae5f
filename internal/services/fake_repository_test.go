package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/certificate"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/events"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/repositories"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/storage"
)

// fakeRepo is an in-memory Repository. Every sub-repository shares one lock.
// Transactions run against the same state and do not roll back.
type fakeRepo struct {
	mu     sync.Mutex
	nextID uint

	courses           map[uint]*models.Course
	modules           map[uint]*models.Module
	testSets          map[uint]*models.TestSet
	questions         map[uint][]*models.Question
	courseProgress    map[string]*models.UserCourseProgress
	moduleProgress    map[string]*models.UserModuleProgress
	courseResults     []*models.UserTestResult
	assessmentResults []*models.AssessmentTestResult
	certificates      []*models.Certificate
	assessmentTests   map[uint]*models.AssessmentTest
	users             map[string]*models.User
	identities        map[string]*models.User

	// txErr fails WithTransaction after fn has run
	txErr error

	// beforeWrite runs once, unlocked, at the start of the next progress or
	// assessment write; tests use it to commit a concurrent change.
	beforeWrite func()
}

func (r *fakeRepo) interleave() {
	r.mu.Lock()
	fn := r.beforeWrite
	r.beforeWrite = nil
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		courses:         map[uint]*models.Course{},
		modules:         map[uint]*models.Module{},
		testSets:        map[uint]*models.TestSet{},
		questions:       map[uint][]*models.Question{},
		courseProgress:  map[string]*models.UserCourseProgress{},
		moduleProgress:  map[string]*models.UserModuleProgress{},
		assessmentTests: map[uint]*models.AssessmentTest{},
		users:           map[string]*models.User{},
		identities:      map[string]*models.User{},
	}
}

func (r *fakeRepo) id() uint {
	r.nextID++
	return r.nextID
}

func (r *fakeRepo) Course() repositories.CourseRepository                 { return fakeCourses{r} }
func (r *fakeRepo) Module() repositories.ModuleRepository                 { return fakeModules{r} }
func (r *fakeRepo) TestSet() repositories.TestSetRepository               { return fakeTestSets{r} }
func (r *fakeRepo) Progress() repositories.ProgressRepository             { return fakeProgress{r} }
func (r *fakeRepo) Result() repositories.ResultRepository                 { return fakeResults{r} }
func (r *fakeRepo) Certificate() repositories.CertificateRepository       { return fakeCertificates{r} }
func (r *fakeRepo) AssessmentTest() repositories.AssessmentTestRepository { return fakeAssessmentTests{r} }
func (r *fakeRepo) User() repositories.UserRepository                     { return fakeUsers{r} }
func (r *fakeRepo) Identity() repositories.IdentityRepository             { return fakeIdentity{r} }
func (r *fakeRepo) Dashboard() repositories.DashboardRepository           { return fakeDashboard{r} }

func (r *fakeRepo) WithTransaction(_ context.Context, fn func(repositories.Repository) error) error {
	if err := fn(r); err != nil {
		return err
	}
	return r.txErr
}

func (r *fakeRepo) Ping(context.Context) error { return nil }
func (r *fakeRepo) Close() error               { return nil }

// ===== SEEDING =====

func (r *fakeRepo) seedCourse(moduleCount int, testSetID *uint) *models.Course {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := &models.Course{
		ID:              r.id(),
		Name:            "Ilmiy tadqiqot asoslari",
		ModuleCount:     moduleCount,
		TestSetID:       testSetID,
		TimePerQuestion: models.DefaultTimePerQuestion,
		PassingScore:    models.DefaultPassingScore,
		IsActive:        true,
	}
	r.courses[c.ID] = c
	for n := 1; n <= moduleCount; n++ {
		m := models.NewDefaultModule(c, n)
		m.ID = r.id()
		r.modules[m.ID] = &m
	}
	return c
}

// seedTestSet creates a bank of n questions whose correct answer is always "A"
func (r *fakeRepo) seedTestSet(n int) *models.TestSet {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := &models.TestSet{ID: r.id(), Name: "Bank"}
	r.testSets[set.ID] = set
	for i := 1; i <= n; i++ {
		q := &models.Question{ID: r.id(), TestSetID: set.ID, Number: i, Text: "Savol"}
		for j, letter := range models.AnswerLetters {
			q.Answers = append(q.Answers, models.Answer{
				ID:         r.id(),
				QuestionID: q.ID,
				Letter:     letter,
				Text:       "Javob " + letter,
				IsCorrect:  j == 0,
			})
		}
		r.questions[set.ID] = append(r.questions[set.ID], q)
	}
	return set
}

func (r *fakeRepo) seedUser(id string) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := &models.User{
		ID:               id,
		FullName:         "Ali Valiyev",
		FirstName:        "Ali",
		LastName:         "Valiyev",
		Status:           models.StatusRegular,
		AssessmentStatus: models.StatusRegular,
	}
	r.users[id] = u
	return u
}

func (r *fakeRepo) courseModules(courseID uint) []*models.Module {
	var out []*models.Module
	for _, m := range r.modules {
		if m.CourseID == courseID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// answersFor answers every question of the set, the first `correct` ones right
func answersFor(questions []*models.Question, correct int) models.AnswerMap {
	out := models.AnswerMap{}
	for i, q := range questions {
		if i < correct {
			out[q.ID] = q.Answers[0].ID
		} else {
			out[q.ID] = q.Answers[1].ID
		}
	}
	return out
}

func progressKey(userID string, id uint) string {
	return fmt.Sprintf("%s/%d", userID, id)
}

// ===== COURSES AND MODULES =====

type fakeCourses struct{ r *fakeRepo }

func (f fakeCourses) Create(_ context.Context, c *models.Course) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	c.ID = f.r.id()
	f.r.courses[c.ID] = c
	return nil
}

func (f fakeCourses) GetByID(_ context.Context, id uint) (*models.Course, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if c, ok := f.r.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakeCourses) Update(_ context.Context, c *models.Course) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	f.r.courses[c.ID] = c
	return nil
}

func (f fakeCourses) List(_ context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []*models.Course
	for _, c := range f.r.courses {
		if filters.ActiveOnly && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

type fakeModules struct{ r *fakeRepo }

func (f fakeModules) GetByID(_ context.Context, id uint) (*models.Module, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if m, ok := f.r.modules[id]; ok {
		return m, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakeModules) Update(_ context.Context, m *models.Module) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	f.r.modules[m.ID] = m
	return nil
}

func (f fakeModules) ListByCourse(_ context.Context, courseID uint) ([]*models.Module, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	return f.r.courseModules(courseID), nil
}

func (f fakeModules) ListNumbers(_ context.Context, courseID uint) ([]int, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []int
	for _, m := range f.r.courseModules(courseID) {
		out = append(out, m.Number)
	}
	return out, nil
}

func (f fakeModules) CreateBatch(_ context.Context, modules []models.Module) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for i := range modules {
		m := modules[i]
		for _, existing := range f.r.modules {
			if existing.CourseID == m.CourseID && existing.Number == m.Number {
				return gorm.ErrDuplicatedKey
			}
		}
		m.ID = f.r.id()
		f.r.modules[m.ID] = &m
	}
	return nil
}

func (f fakeModules) DeleteByNumbers(_ context.Context, courseID uint, numbers []int) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	drop := map[int]bool{}
	for _, n := range numbers {
		drop[n] = true
	}
	for id, m := range f.r.modules {
		if m.CourseID == courseID && drop[m.Number] {
			delete(f.r.modules, id)
		}
	}
	return nil
}

// ===== QUESTION BANK =====

type fakeTestSets struct{ r *fakeRepo }

func (f fakeTestSets) Create(_ context.Context, set *models.TestSet) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	set.ID = f.r.id()
	f.r.testSets[set.ID] = set
	return nil
}

func (f fakeTestSets) GetByID(_ context.Context, id uint) (*models.TestSet, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if s, ok := f.r.testSets[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakeTestSets) List(_ context.Context) ([]*models.TestSet, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []*models.TestSet
	for _, s := range f.r.testSets {
		s.QuestionCount = len(f.r.questions[s.ID])
		out = append(out, s)
	}
	return out, nil
}

func (f fakeTestSets) GetQuestions(_ context.Context, testSetID uint) ([]*models.Question, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	out := append([]*models.Question(nil), f.r.questions[testSetID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (f fakeTestSets) CountQuestions(_ context.Context, testSetID uint) (int64, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	return int64(len(f.r.questions[testSetID])), nil
}

func (f fakeTestSets) AddQuestion(_ context.Context, q *models.Question) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, existing := range f.r.questions[q.TestSetID] {
		if existing.Number == q.Number {
			return gorm.ErrDuplicatedKey
		}
	}
	q.ID = f.r.id()
	for i := range q.Answers {
		q.Answers[i].ID = f.r.id()
		q.Answers[i].QuestionID = q.ID
	}
	f.r.questions[q.TestSetID] = append(f.r.questions[q.TestSetID], q)
	return nil
}

func (f fakeTestSets) ReplaceQuestions(_ context.Context, testSetID uint, questions []models.Question) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	f.r.questions[testSetID] = nil
	for i := range questions {
		q := questions[i]
		q.ID = f.r.id()
		q.TestSetID = testSetID
		for j := range q.Answers {
			q.Answers[j].ID = f.r.id()
			q.Answers[j].QuestionID = q.ID
		}
		f.r.questions[testSetID] = append(f.r.questions[testSetID], &q)
	}
	return nil
}

// ===== PROGRESS =====

type fakeProgress struct{ r *fakeRepo }

func (f fakeProgress) GetOrCreateCourseProgress(_ context.Context, userID string, courseID uint, startedAt time.Time) (*models.UserCourseProgress, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	key := progressKey(userID, courseID)
	p, ok := f.r.courseProgress[key]
	if !ok {
		p = &models.UserCourseProgress{ID: f.r.id(), UserID: userID, CourseID: courseID, StartedAt: startedAt}
		f.r.courseProgress[key] = p
	}
	c := *p
	return &c, nil
}

func (f fakeProgress) GetCourseProgress(_ context.Context, userID string, courseID uint) (*models.UserCourseProgress, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if p, ok := f.r.courseProgress[progressKey(userID, courseID)]; ok {
		c := *p
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// UpdateCourseProgress merges like the SQL update: flags only turn on and
// completed_at keeps its first value.
func (f fakeProgress) UpdateCourseProgress(_ context.Context, p *models.UserCourseProgress) error {
	f.r.interleave()
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	stored, ok := f.r.courseProgress[progressKey(p.UserID, p.CourseID)]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.TestScore = p.TestScore
	stored.TestPassed = stored.TestPassed || p.TestPassed
	stored.IsCompleted = stored.IsCompleted || p.IsCompleted
	if stored.CompletedAt == nil {
		stored.CompletedAt = p.CompletedAt
	}
	*p = *stored
	return nil
}

func (f fakeProgress) ListCourseProgressByUser(_ context.Context, userID string) ([]*models.UserCourseProgress, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []*models.UserCourseProgress
	for _, p := range f.r.courseProgress {
		if p.UserID == userID {
			p.Course = f.r.courses[p.CourseID]
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeProgress) GetOrCreateModuleProgress(_ context.Context, userID string, moduleID uint) (*models.UserModuleProgress, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	key := progressKey(userID, moduleID)
	p, ok := f.r.moduleProgress[key]
	if !ok {
		p = &models.UserModuleProgress{ID: f.r.id(), UserID: userID, ModuleID: moduleID}
		f.r.moduleProgress[key] = p
	}
	c := *p
	return &c, nil
}

func (f fakeProgress) UpdateModuleProgress(_ context.Context, p *models.UserModuleProgress) error {
	f.r.interleave()
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	stored, ok := f.r.moduleProgress[progressKey(p.UserID, p.ModuleID)]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.ViewedPresentation = stored.ViewedPresentation || p.ViewedPresentation
	stored.WatchedVideo = stored.WatchedVideo || p.WatchedVideo
	stored.IsCompleted = stored.IsCompleted || p.IsCompleted
	if stored.CompletedAt == nil {
		stored.CompletedAt = p.CompletedAt
	}
	*p = *stored
	return nil
}

func (f fakeProgress) ListModuleProgress(_ context.Context, userID string, courseID uint) ([]*models.UserModuleProgress, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []*models.UserModuleProgress
	for _, m := range f.r.courseModules(courseID) {
		if p, ok := f.r.moduleProgress[progressKey(userID, m.ID)]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// ===== RESULTS =====

type fakeResults struct{ r *fakeRepo }

func (f fakeResults) CreateCourseResult(_ context.Context, res *models.UserTestResult) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	res.ID = f.r.id()
	f.r.courseResults = append(f.r.courseResults, res)
	return nil
}

func (f fakeResults) GetCourseResult(_ context.Context, id uint) (*models.UserTestResult, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, res := range f.r.courseResults {
		if res.ID == id {
			return res, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakeResults) latestCourse(userID string, courseID uint, passedOnly bool) (*models.UserTestResult, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var latest *models.UserTestResult
	for _, res := range f.r.courseResults {
		if res.UserID != userID || res.CourseID != courseID || (passedOnly && !res.Passed) {
			continue
		}
		if latest == nil || !res.CompletedAt.Before(latest.CompletedAt) {
			latest = res
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (f fakeResults) LatestCourseResult(_ context.Context, userID string, courseID uint) (*models.UserTestResult, error) {
	return f.latestCourse(userID, courseID, false)
}

func (f fakeResults) LatestPassedCourseResult(_ context.Context, userID string, courseID uint) (*models.UserTestResult, error) {
	return f.latestCourse(userID, courseID, true)
}

func (f fakeResults) ListCourseResults(_ context.Context, filters repositories.ResultFilters) ([]*models.UserTestResult, int64, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []*models.UserTestResult
	for _, res := range f.r.courseResults {
		if filters.UserID != nil && res.UserID != *filters.UserID {
			continue
		}
		if filters.CourseID != nil && res.CourseID != *filters.CourseID {
			continue
		}
		res.User = f.r.users[res.UserID]
		res.Course = f.r.courses[res.CourseID]
		out = append(out, res)
	}
	total := int64(len(out))
	return paginate(out, filters.Offset, filters.Limit), total, nil
}

func (f fakeResults) CreateAssessmentResult(_ context.Context, res *models.AssessmentTestResult) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	res.ID = f.r.id()
	f.r.assessmentResults = append(f.r.assessmentResults, res)
	return nil
}

func (f fakeResults) LatestAssessmentResult(_ context.Context, userID string, testID uint) (*models.AssessmentTestResult, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var latest *models.AssessmentTestResult
	for _, res := range f.r.assessmentResults {
		if res.UserID == userID && res.AssessmentTestID == testID {
			latest = res
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (f fakeResults) ListAssessmentResults(_ context.Context, filters repositories.ResultFilters) ([]*models.AssessmentTestResult, int64, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []*models.AssessmentTestResult
	for _, res := range f.r.assessmentResults {
		if filters.UserID != nil && res.UserID != *filters.UserID {
			continue
		}
		res.User = f.r.users[res.UserID]
		res.AssessmentTest = f.r.assessmentTests[res.AssessmentTestID]
		out = append(out, res)
	}
	total := int64(len(out))
	return paginate(out, filters.Offset, filters.Limit), total, nil
}

func paginate[T any](rows []T, offset, limit int) []T {
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

// ===== CERTIFICATES =====

type fakeCertificates struct{ r *fakeRepo }

func (f fakeCertificates) Create(_ context.Context, c *models.Certificate) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, existing := range f.r.certificates {
		if existing.UserID == c.UserID && existing.CourseID == c.CourseID {
			return gorm.ErrDuplicatedKey
		}
	}
	c.ID = f.r.id()
	f.r.certificates = append(f.r.certificates, c)
	return nil
}

func (f fakeCertificates) GetByID(_ context.Context, id uint) (*models.Certificate, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, c := range f.r.certificates {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakeCertificates) GetByUserAndCourse(_ context.Context, userID string, courseID uint) (*models.Certificate, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, c := range f.r.certificates {
		if c.UserID == userID && c.CourseID == courseID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakeCertificates) ListByUser(_ context.Context, userID string) ([]*models.Certificate, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []*models.Certificate
	for _, c := range f.r.certificates {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

// ===== ASSESSMENT TESTS =====

type fakeAssessmentTests struct{ r *fakeRepo }

func (f fakeAssessmentTests) Create(_ context.Context, t *models.AssessmentTest) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	t.ID = f.r.id()
	f.r.assessmentTests[t.ID] = t
	return nil
}

func (f fakeAssessmentTests) Update(_ context.Context, t *models.AssessmentTest) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	f.r.assessmentTests[t.ID] = t
	return nil
}

func (f fakeAssessmentTests) GetByID(_ context.Context, id uint) (*models.AssessmentTest, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if t, ok := f.r.assessmentTests[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakeAssessmentTests) GetActive(_ context.Context) (*models.AssessmentTest, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var active *models.AssessmentTest
	for _, t := range f.r.assessmentTests {
		if t.IsActive && (active == nil || t.ID > active.ID) {
			active = t
		}
	}
	if active == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return active, nil
}

func (f fakeAssessmentTests) DeactivateOthers(_ context.Context, keepID uint) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for id, t := range f.r.assessmentTests {
		if id != keepID {
			t.IsActive = false
		}
	}
	return nil
}

// ===== USERS =====

type fakeUsers struct{ r *fakeRepo }

func (f fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if u, ok := f.r.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakeUsers) GetByIDs(_ context.Context, ids []string) ([]*models.User, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []*models.User
	for _, id := range ids {
		if u, ok := f.r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f fakeUsers) EnsureProfile(_ context.Context, identity *models.User) (*models.User, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if u, ok := f.r.users[identity.ID]; ok {
		u.FullName, u.FirstName, u.LastName, u.Email = identity.FullName, identity.FirstName, identity.LastName, identity.Email
		return u, nil
	}
	u := *identity
	u.Status, u.AssessmentStatus = models.StatusRegular, models.StatusRegular
	f.r.users[u.ID] = &u
	return &u, nil
}

// UpdateAssessment never lowers a status already stored
func (f fakeUsers) UpdateAssessment(_ context.Context, u *models.User) error {
	f.r.interleave()
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	stored, ok := f.r.users[u.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Status != models.StatusTalented {
		stored.Status = u.Status
	}
	if stored.AssessmentStatus != models.StatusTalented {
		stored.AssessmentStatus = u.AssessmentStatus
	}
	stored.AssessmentScore = u.AssessmentScore
	stored.AssessmentTakenAt = u.AssessmentTakenAt
	stored.AssessmentNextAttempt = u.AssessmentNextAttempt

	role := u.Role
	*u = *stored
	u.Role = role
	return nil
}

func (f fakeUsers) SetPhotoKey(_ context.Context, id string, key string) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	u, ok := f.r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PhotoKey = &key
	return nil
}

type fakeIdentity struct{ r *fakeRepo }

func (f fakeIdentity) GetByID(_ context.Context, id string) (*models.User, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if u, ok := f.r.identities[id]; ok {
		return u, nil
	}
	return nil, repositories.ErrNotFound
}

func (f fakeIdentity) HasRole(_ context.Context, id string, role models.UserRole) (bool, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	u, ok := f.r.identities[id]
	return ok && u.Role == role, nil
}

// ===== DASHBOARD =====

type fakeDashboard struct{ r *fakeRepo }

func (f fakeDashboard) GetOverview(context.Context) (*repositories.DashboardOverviewData, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	return &repositories.DashboardOverviewData{
		TotalCourses:       int64(len(f.r.courses)),
		CourseResults:      int64(len(f.r.courseResults)),
		CertificatesIssued: int64(len(f.r.certificates)),
		AssessmentResults:  int64(len(f.r.assessmentResults)),
	}, nil
}

func (f fakeDashboard) GetCourseResultMetrics(context.Context) (*repositories.ResultMetricsData, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	out := &repositories.ResultMetricsData{}
	var sum float64
	for _, res := range f.r.courseResults {
		out.Total++
		if res.Passed {
			out.Passed++
		}
		sum += float64(res.Percentage)
	}
	if out.Total > 0 {
		out.AveragePercentage = sum / float64(out.Total)
	}
	return out, nil
}

func (f fakeDashboard) GetAssessmentResultMetrics(context.Context) (*repositories.ResultMetricsData, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	out := &repositories.ResultMetricsData{}
	var sum float64
	for _, res := range f.r.assessmentResults {
		out.Total++
		if res.Passed {
			out.Passed++
		}
		sum += res.Percentage
	}
	if out.Total > 0 {
		out.AveragePercentage = sum / float64(out.Total)
	}
	return out, nil
}

func (f fakeDashboard) GetActivityTrends(_ context.Context, since time.Time) ([]repositories.ActivityTrendData, error) {
	return []repositories.ActivityTrendData{{Date: since, Submissions: 3, Users: 2, AveragePercentage: 66.666}}, nil
}

func (f fakeDashboard) GetCoursePerformance(_ context.Context, limit int) ([]repositories.CoursePerformanceData, error) {
	return []repositories.CoursePerformanceData{{CourseID: 1, CourseName: "Kurs", Submissions: 3, Passed: 1, AveragePercentage: 50}}, nil
}

// ===== COLLABORATORS =====

// memStore is an in-memory ArtifactStore
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (s *memStore) Put(_ context.Context, key string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.objects[key] = append([]byte(nil), data...)
	return nil
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return data, nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return storage.ErrObjectNotFound
	}
	delete(s.objects, key)
	return nil
}

// stubRenderer records what it was asked to draw
type stubRenderer struct {
	mu    sync.Mutex
	calls []certificate.Data
	err   error
}

func (r *stubRenderer) Render(d certificate.Data) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, d)
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.3 stub"), nil
}

// memSessions is an in-memory SessionStore
type memSessions struct {
	mu   sync.Mutex
	sets map[string][]uint
}

func newMemSessions() *memSessions {
	return &memSessions{sets: map[string][]uint{}}
}

func (m *memSessions) Save(_ context.Context, userID string, courseID uint, ids []uint, _ time.Time, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets[progressKey(userID, courseID)] = ids
	return nil
}

func (m *memSessions) Load(_ context.Context, userID string, courseID uint) ([]uint, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids, ok := m.sets[progressKey(userID, courseID)]
	return ids, ok, nil
}

func (m *memSessions) Clear(_ context.Context, userID string, courseID uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sets, progressKey(userID, courseID))
}

// identityShuffler leaves the order untouched
type identityShuffler struct{}

func (identityShuffler) Shuffle(int, func(i, j int)) {}

// testEnv bundles a fake repository with the collaborators every service needs
type testEnv struct {
	repo     *fakeRepo
	store    *memStore
	renderer *stubRenderer
	sessions *memSessions
	events   *events.MockEventPublisher
	now      time.Time
	deps     *Dependencies
}

func newTestEnv() *testEnv {
	env := &testEnv{
		repo:     newFakeRepo(),
		store:    newMemStore(),
		renderer: &stubRenderer{},
		sessions: newMemSessions(),
		events:   events.NewMockEventPublisher(nil),
		now:      time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC),
	}
	env.deps = &Dependencies{
		Repo:     env.repo,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Events:   env.events,
		Store:    env.store,
		Renderer: env.renderer,
		Sessions: env.sessions,
		Shuffler: identityShuffler{},
		Clock:    func() time.Time { return env.now },
	}
	return env
}

func (e *testEnv) advance(d time.Duration) {
	e.now = e.now.Add(d)
}

// completeAllModules marks every module of the course completed for the user
func (e *testEnv) completeAllModules(userID string, courseID uint) {
	e.repo.mu.Lock()
	defer e.repo.mu.Unlock()
	done := e.now
	for _, m := range e.repo.courseModules(courseID) {
		e.repo.moduleProgress[progressKey(userID, m.ID)] = &models.UserModuleProgress{
			ID: e.repo.id(), UserID: userID, ModuleID: m.ID, IsCompleted: true, CompletedAt: &done,
		}
	}
}

var errBoom = errors.New("boom")
