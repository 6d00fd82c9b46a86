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

	"github.com/SAP-F-2025/quiz-assessment-service/internal/assessment"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/cache"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/events"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/models"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/repositories"
	"gorm.io/gorm"
)

// memoryStore is an in-memory stand-in for the postgres repository. txMu
// plays the role of the quiz row lock: transactions and Record hold it for
// their whole unit of work.
type memoryStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	nextID      uint
	quizzes     map[uint]models.Quiz
	questions   map[uint]models.Question
	attempts    map[uint]models.QuizAttempt
	classes     map[uint]models.Class
	members     map[uint]map[string]bool
	quizClasses map[uint][]uint

	recordErr error
	// beforeRecord runs ahead of Record taking the lock, standing in for a
	// writer that commits between grading and recording.
	beforeRecord func()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		quizzes:     make(map[uint]models.Quiz),
		questions:   make(map[uint]models.Question),
		attempts:    make(map[uint]models.QuizAttempt),
		classes:     make(map[uint]models.Class),
		members:     make(map[uint]map[string]bool),
		quizClasses: make(map[uint][]uint),
	}
}

func (s *memoryStore) id() uint {
	s.nextID++
	return s.nextID
}

type memorySnapshot struct {
	nextID      uint
	quizzes     map[uint]models.Quiz
	questions   map[uint]models.Question
	classes     map[uint]models.Class
	members     map[uint]map[string]bool
	quizClasses map[uint][]uint
}

func (s *memoryStore) snapshot() memorySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := memorySnapshot{
		nextID:      s.nextID,
		quizzes:     make(map[uint]models.Quiz, len(s.quizzes)),
		questions:   make(map[uint]models.Question, len(s.questions)),
		classes:     make(map[uint]models.Class, len(s.classes)),
		members:     make(map[uint]map[string]bool, len(s.members)),
		quizClasses: make(map[uint][]uint, len(s.quizClasses)),
	}
	for k, v := range s.quizzes {
		snap.quizzes[k] = v
	}
	for k, v := range s.questions {
		snap.questions[k] = v
	}
	for k, v := range s.classes {
		snap.classes[k] = v
	}
	for k, v := range s.members {
		m := make(map[string]bool, len(v))
		for user := range v {
			m[user] = true
		}
		snap.members[k] = m
	}
	for k, v := range s.quizClasses {
		snap.quizClasses[k] = append([]uint(nil), v...)
	}
	return snap
}

func (s *memoryStore) restore(snap memorySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = snap.nextID
	s.quizzes = snap.quizzes
	s.questions = snap.questions
	s.classes = snap.classes
	s.members = snap.members
	s.quizClasses = snap.quizClasses
}

// quiz returns a detached copy with its classes loaded; callers hold mu
func (s *memoryStore) quiz(id uint, withQuestions bool) (*models.Quiz, error) {
	stored, ok := s.quizzes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	quiz := stored
	quiz.Classes = nil
	quiz.Questions = nil
	for _, classID := range s.quizClasses[id] {
		quiz.Classes = append(quiz.Classes, models.Class{ID: classID})
	}
	if withQuestions {
		for _, q := range s.questionsOf(id) {
			quiz.Questions = append(quiz.Questions, *q)
		}
	}
	return &quiz, nil
}

func (s *memoryStore) questionsOf(quizID uint) []*models.Question {
	var list []*models.Question
	for _, q := range s.questions {
		if q.QuizID == quizID {
			q := q
			list = append(list, &q)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Position != list[j].Position {
			return list[i].Position < list[j].Position
		}
		return list[i].ID < list[j].ID
	})
	return list
}

func (s *memoryStore) countAttempts(studentID string, quizID uint) int {
	count := 0
	for _, a := range s.attempts {
		if a.QuizID == quizID && a.StudentID == studentID {
			count++
		}
	}
	return count
}

// ===== AGGREGATE =====

type memoryRepository struct {
	store *memoryStore
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{store: newMemoryStore()}
}

func (r *memoryRepository) Quiz() repositories.QuizRepository         { return memoryQuizzes{r.store} }
func (r *memoryRepository) Question() repositories.QuestionRepository { return memoryQuestions{r.store} }
func (r *memoryRepository) Attempt() repositories.AttemptRepository   { return memoryAttempts{r.store} }
func (r *memoryRepository) Class() repositories.ClassRepository       { return memoryClasses{r.store} }

// WithTransaction serialises fn against other transactions and rolls the
// catalog back when fn fails. Attempts are only written by Record.
func (r *memoryRepository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	r.store.txMu.Lock()
	defer r.store.txMu.Unlock()

	snap := r.store.snapshot()
	if err := fn(nil); err != nil {
		r.store.restore(snap)
		return err
	}
	return nil
}

// ===== QUIZZES =====

type memoryQuizzes struct{ s *memoryStore }

func (m memoryQuizzes) Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	quiz.ID = m.s.id()
	if quiz.Status == "" {
		quiz.Status = models.QuizStatusDraft
	}
	quiz.Version = 1
	stored := *quiz
	stored.Classes, stored.Questions = nil, nil
	m.s.quizzes[quiz.ID] = stored
	m.s.quizClasses[quiz.ID] = quiz.ClassIDs()
	return nil
}

func (m memoryQuizzes) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.s.quiz(id, false)
}

func (m memoryQuizzes) GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.s.quiz(id, true)
}

func (m memoryQuizzes) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	return m.GetByID(ctx, tx, id)
}

func (m memoryQuizzes) Update(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.quizzes[quiz.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	quiz.Version++
	stored := *quiz
	stored.Classes, stored.Questions = nil, nil
	m.s.quizzes[quiz.ID] = stored
	return nil
}

func (m memoryQuizzes) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.quizzes[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.s.quizzes, id)
	delete(m.s.quizClasses, id)
	for qid, q := range m.s.questions {
		if q.QuizID == id {
			delete(m.s.questions, qid)
		}
	}
	return nil
}

func (m memoryQuizzes) ListByCreator(ctx context.Context, tx *gorm.DB, creatorID string, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	var all []*models.Quiz
	for id, q := range m.s.quizzes {
		if q.CreatedBy != creatorID {
			continue
		}
		if filters.Status != nil && q.Status != *filters.Status {
			continue
		}
		quiz, _ := m.s.quiz(id, false)
		all = append(all, quiz)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	total := int64(len(all))
	start := min(filters.Offset, len(all))
	end := min(start+filters.Limit, len(all))
	return all[start:end], total, nil
}

func (m memoryQuizzes) ListPublishedForClasses(ctx context.Context, tx *gorm.DB, classIDs []uint) ([]*models.Quiz, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	wanted := make(map[uint]bool, len(classIDs))
	for _, id := range classIDs {
		wanted[id] = true
	}
	var list []*models.Quiz
	for id, q := range m.s.quizzes {
		if q.Status != models.QuizStatusPublished {
			continue
		}
		for _, classID := range m.s.quizClasses[id] {
			if wanted[classID] {
				quiz, _ := m.s.quiz(id, false)
				list = append(list, quiz)
				break
			}
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (m memoryQuizzes) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.QuizStatus) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	q, ok := m.s.quizzes[id]
	if !ok {
		return repositories.ErrNotFound
	}
	q.Status = status
	q.Version++
	m.s.quizzes[id] = q
	return nil
}

func (m memoryQuizzes) UpdateTotalPoints(ctx context.Context, tx *gorm.DB, id uint, totalPoints int) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	q, ok := m.s.quizzes[id]
	if !ok {
		return repositories.ErrNotFound
	}
	q.TotalPoints = totalPoints
	q.Version++
	m.s.quizzes[id] = q
	return nil
}

func (m memoryQuizzes) ReplaceClasses(ctx context.Context, tx *gorm.DB, id uint, classIDs []uint) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.quizClasses[id] = append([]uint(nil), classIDs...)
	if q, ok := m.s.quizzes[id]; ok {
		q.Version++
		m.s.quizzes[id] = q
	}
	return nil
}

// ===== QUESTIONS =====

type memoryQuestions struct{ s *memoryStore }

func (m memoryQuestions) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	question.ID = m.s.id()
	m.s.questions[question.ID] = *question
	return nil
}

func (m memoryQuestions) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	q, ok := m.s.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &q, nil
}

func (m memoryQuestions) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.questions[question.ID] = *question
	return nil
}

func (m memoryQuestions) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.questions[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.s.questions, id)
	return nil
}

func (m memoryQuestions) ListByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) ([]*models.Question, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.s.questionsOf(quizID), nil
}

func (m memoryQuestions) ReplaceForQuiz(ctx context.Context, tx *gorm.DB, quizID uint, questions []*models.Question) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for id, q := range m.s.questions {
		if q.QuizID == quizID {
			delete(m.s.questions, id)
		}
	}
	for i, q := range questions {
		q.ID = m.s.id()
		q.QuizID = quizID
		q.Position = i
		m.s.questions[q.ID] = *q
	}
	return nil
}

func (m memoryQuestions) NextPosition(ctx context.Context, tx *gorm.DB, quizID uint) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	next := 0
	for _, q := range m.s.questionsOf(quizID) {
		if q.Position >= next {
			next = q.Position + 1
		}
	}
	return next, nil
}

// ===== ATTEMPTS =====

type memoryAttempts struct{ s *memoryStore }

func (m memoryAttempts) Record(ctx context.Context, attempt *models.QuizAttempt, quizVersion int) error {
	if m.s.beforeRecord != nil {
		m.s.beforeRecord()
	}
	m.s.txMu.Lock()
	defer m.s.txMu.Unlock()
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if m.s.recordErr != nil {
		return m.s.recordErr
	}
	quiz, ok := m.s.quizzes[attempt.QuizID]
	if !ok {
		return assessment.ErrNotFound
	}
	if quiz.Version != quizVersion {
		return fmt.Errorf("%w: quiz %d changed from version %d to %d",
			assessment.ErrPersistenceConflict, quiz.ID, quizVersion, quiz.Version)
	}
	count := m.s.countAttempts(attempt.StudentID, attempt.QuizID)
	if err := assessment.CheckAttemptLimit(&quiz, count); err != nil {
		return err
	}

	attempt.ID = m.s.id()
	attempt.AttemptNumber = count + 1
	m.s.attempts[attempt.ID] = *attempt
	quiz.AttemptCount++
	m.s.quizzes[quiz.ID] = quiz
	return nil
}

func (m memoryAttempts) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.QuizAttempt, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a, ok := m.s.attempts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (m memoryAttempts) CountByStudentAndQuiz(ctx context.Context, tx *gorm.DB, studentID string, quizID uint) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.s.countAttempts(studentID, quizID), nil
}

func (m memoryAttempts) CountByStudentForQuizzes(ctx context.Context, tx *gorm.DB, studentID string, quizIDs []uint) (map[uint]int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	counts := make(map[uint]int, len(quizIDs))
	for _, id := range quizIDs {
		if n := m.s.countAttempts(studentID, id); n > 0 {
			counts[id] = n
		}
	}
	return counts, nil
}

func (m memoryAttempts) ListByStudentAndQuiz(ctx context.Context, tx *gorm.DB, studentID string, quizID uint) ([]*models.QuizAttempt, error) {
	return m.list(func(a models.QuizAttempt) bool {
		return a.QuizID == quizID && a.StudentID == studentID
	}), nil
}

func (m memoryAttempts) ListByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) ([]*models.QuizAttempt, error) {
	return m.list(func(a models.QuizAttempt) bool { return a.QuizID == quizID }), nil
}

func (m memoryAttempts) list(keep func(models.QuizAttempt) bool) []*models.QuizAttempt {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	var list []*models.QuizAttempt
	for _, a := range m.s.attempts {
		if keep(a) {
			a := a
			list = append(list, &a)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].StudentID != list[j].StudentID {
			return list[i].StudentID < list[j].StudentID
		}
		return list[i].AttemptNumber < list[j].AttemptNumber
	})
	return list
}

// ===== CLASSES =====

type memoryClasses struct{ s *memoryStore }

func (m memoryClasses) Create(ctx context.Context, tx *gorm.DB, class *models.Class) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	class.ID = m.s.id()
	m.s.classes[class.ID] = *class
	m.s.members[class.ID] = make(map[string]bool)
	return nil
}

func (m memoryClasses) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Class, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.classes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	for user := range m.s.members[id] {
		c.Members = append(c.Members, models.ClassMember{ClassID: id, UserID: user})
	}
	return &c, nil
}

func (m memoryClasses) CountExisting(ctx context.Context, tx *gorm.DB, ids []uint) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var count int64
	for _, id := range ids {
		if _, ok := m.s.classes[id]; ok {
			count++
		}
	}
	return count, nil
}

func (m memoryClasses) AddMembers(ctx context.Context, tx *gorm.DB, classID uint, userIDs []string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.classes[classID]; !ok {
		return repositories.ErrNotFound
	}
	for _, user := range userIDs {
		m.s.members[classID][user] = true
	}
	return nil
}

func (m memoryClasses) RemoveMember(ctx context.Context, tx *gorm.DB, classID uint, userID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if !m.s.members[classID][userID] {
		return repositories.ErrNotFound
	}
	delete(m.s.members[classID], userID)
	return nil
}

func (m memoryClasses) ClassIDsForUser(ctx context.Context, tx *gorm.DB, userID string) ([]uint, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var ids []uint
	for classID, users := range m.s.members {
		if users[userID] {
			ids = append(ids, classID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// ===== COLLABORATORS =====

// recordingDispatcher keeps every dispatched event in order
type recordingDispatcher struct {
	mu     sync.Mutex
	events []*events.NotificationEvent
	refuse bool
}

func (d *recordingDispatcher) Dispatch(event *events.NotificationEvent) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.refuse {
		return false
	}
	d.events = append(d.events, event)
	return true
}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	types := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		types = append(types, e.Type)
	}
	return types
}

func (d *recordingDispatcher) ofType(eventType events.EventType) []*events.NotificationEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	var matched []*events.NotificationEvent
	for _, e := range d.events {
		if e.Type == eventType {
			matched = append(matched, e)
		}
	}
	return matched
}

// memoryCache is a CacheService over a map. Values round-trip through
// their concrete Go type, which is all the class directory stores.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]uint
	gets    int
	failGet bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]uint)}
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids, ok := value.([]uint)
	if !ok {
		return errors.New("unsupported cache value")
	}
	c.entries[key] = append([]uint(nil), ids...)
	return nil
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.failGet {
		return errors.New("connection refused")
	}
	ids, ok := c.entries[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	*(dest.(*[]uint)) = append([]uint(nil), ids...)
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	return nil
}

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
