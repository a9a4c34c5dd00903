package menu

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/langhaus/website-backend/internal/domain/menu"
	"github.com/langhaus/website-backend/internal/models"
)

// ---------- mocks ----------

type mockRepo struct {
	mu         sync.Mutex
	cards      map[uint]*models.MenuCard
	categories map[uint][]models.MenuCategory
	lastChange map[uint]time.Time

	failLastChange error
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		cards:      map[uint]*models.MenuCard{},
		categories: map[uint][]models.MenuCategory{},
		lastChange: map[uint]time.Time{},
	}
}

func (m *mockRepo) addCard(card models.MenuCard, lastChange time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := card
	m.cards[card.ID] = &c
	m.lastChange[card.ID] = lastChange
}

func (m *mockRepo) card(id uint) models.MenuCard {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.cards[id]
}

func (m *mockRepo) ListCardIDs(ctx context.Context) ([]uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]uint, 0, len(m.cards))
	for id := range m.cards {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *mockRepo) GetCard(ctx context.Context, id uint) (*models.MenuCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	card, ok := m.cards[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	c := *card
	return &c, nil
}

func (m *mockRepo) ListCategoriesWithItems(ctx context.Context, cardID uint) ([]models.MenuCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.categories[cardID], nil
}

func (m *mockRepo) LastContentChange(ctx context.Context, cardID uint) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLastChange != nil {
		return time.Time{}, m.failLastChange
	}
	if t, ok := m.lastChange[cardID]; ok {
		return t, nil
	}
	return domain.EpochFloor, nil
}

func (m *mockRepo) SetGeneratedPdf(ctx context.Context, cardID uint, relPath string, generatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	card, ok := m.cards[cardID]
	if !ok {
		return errors.New("record not found")
	}
	p := relPath
	t := generatedAt
	card.PdfPath = &p
	card.LastGeneratedAt = &t
	return nil
}

type mockBuilder struct {
	mu      sync.Mutex
	calls   []uint
	failFor map[uint]error

	inFlight      map[uint]int
	maxConcurrent int
}

func newMockBuilder() *mockBuilder {
	return &mockBuilder{
		failFor:  map[uint]error{},
		inFlight: map[uint]int{},
	}
}

func (b *mockBuilder) Generate(ctx context.Context, card *models.MenuCard, categories []models.MenuCategory) (string, error) {
	b.mu.Lock()
	b.calls = append(b.calls, card.ID)
	b.inFlight[card.ID]++
	if b.inFlight[card.ID] > b.maxConcurrent {
		b.maxConcurrent = b.inFlight[card.ID]
	}
	err := b.failFor[card.ID]
	b.mu.Unlock()

	time.Sleep(time.Millisecond)

	b.mu.Lock()
	b.inFlight[card.ID]--
	b.mu.Unlock()

	if err != nil {
		return "", err
	}
	return fmt.Sprintf("pdf/menu_card_%d.pdf", card.ID), nil
}

func (b *mockBuilder) callsFor(id uint) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if c == id {
			n++
		}
	}
	return n
}

type mockFileStore struct {
	mu      sync.Mutex
	removed []string
}

func (f *mockFileStore) Remove(relPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, relPath)
	return nil
}

func newTestFixture() (*mockRepo, *mockBuilder, *mockFileStore, *StalenessTracker, *RegenerateCardPDF, *Scheduler) {
	repo := newMockRepo()
	builder := newMockBuilder()
	files := &mockFileStore{}
	log := zerolog.Nop()

	tracker := NewStalenessTracker(repo)
	regen := NewRegenerateCardPDF(repo, builder, files, log)
	sched := NewScheduler(time.Minute, repo, tracker, regen, log)
	return repo, builder, files, tracker, regen, sched
}

func ptrTime(t time.Time) *time.Time { return &t }
func ptrStr(s string) *string        { return &s }

// ---------- tests ----------

func TestTickRegeneratesOnlyStaleCards(t *testing.T) {
	repo, builder, _, _, _, sched := newTestFixture()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	// A and C are fresh, B's content changed after its last generation.
	repo.addCard(models.MenuCard{
		ID: 1, Name: "A",
		PdfPath:         ptrStr("pdf/menu_card_1.pdf"),
		LastGeneratedAt: ptrTime(base.Add(time.Hour)),
	}, base)
	repo.addCard(models.MenuCard{
		ID: 2, Name: "B",
		PdfPath:         ptrStr("pdf/menu_card_2.pdf"),
		LastGeneratedAt: ptrTime(base),
	}, base.Add(time.Hour))
	repo.addCard(models.MenuCard{
		ID: 3, Name: "C",
		PdfPath:         ptrStr("pdf/menu_card_3.pdf"),
		LastGeneratedAt: ptrTime(base.Add(time.Hour)),
	}, base)

	sched.Tick(context.Background())

	assert.Equal(t, []uint{2}, builder.calls)

	a := repo.card(1)
	assert.Equal(t, base.Add(time.Hour), *a.LastGeneratedAt)
	c := repo.card(3)
	assert.Equal(t, base.Add(time.Hour), *c.LastGeneratedAt)

	b := repo.card(2)
	assert.True(t, b.LastGeneratedAt.After(base))
}

func TestTickRegeneratesNeverGeneratedCard(t *testing.T) {
	repo, builder, _, _, _, sched := newTestFixture()

	repo.addCard(models.MenuCard{ID: 7, Name: "Sommerkarte"}, time.Now())

	sched.Tick(context.Background())

	require.Equal(t, 1, builder.callsFor(7))
	card := repo.card(7)
	require.NotNil(t, card.PdfPath)
	assert.Equal(t, "pdf/menu_card_7.pdf", *card.PdfPath)
	require.NotNil(t, card.LastGeneratedAt)
}

func TestTickFailureIsolatedPerCard(t *testing.T) {
	repo, builder, _, _, _, sched := newTestFixture()

	now := time.Now()
	repo.addCard(models.MenuCard{ID: 1, Name: "A"}, now)
	repo.addCard(models.MenuCard{ID: 2, Name: "B"}, now)
	repo.addCard(models.MenuCard{ID: 3, Name: "C"}, now)

	builder.failFor[2] = errors.New("render exploded")

	sched.Tick(context.Background())

	// B failed but A and C still completed.
	assert.Equal(t, 1, builder.callsFor(1))
	assert.Equal(t, 1, builder.callsFor(3))

	b := repo.card(2)
	assert.Nil(t, b.PdfPath)
	assert.Nil(t, b.LastGeneratedAt)

	// Next tick retries B unconditionally and skips the fresh cards.
	delete(builder.failFor, 2)
	sched.Tick(context.Background())

	assert.Equal(t, 1, builder.callsFor(1))
	assert.Equal(t, 2, builder.callsFor(2))
	assert.Equal(t, 1, builder.callsFor(3))

	b = repo.card(2)
	require.NotNil(t, b.PdfPath)
}

func TestManualRegenerationOfFreshCardIsIdempotent(t *testing.T) {
	repo, builder, _, tracker, regen, _ := newTestFixture()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	repo.addCard(models.MenuCard{
		ID: 1, Name: "Speisekarte",
		PdfPath:         ptrStr("pdf/menu_card_1.pdf"),
		LastGeneratedAt: ptrTime(base.Add(time.Hour)),
	}, base)

	card, err := repo.GetCard(context.Background(), 1)
	require.NoError(t, err)
	stale, err := tracker.IsStale(context.Background(), card)
	require.NoError(t, err)
	require.False(t, stale)

	updated, err := regen.Execute(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, builder.callsFor(1))
	assert.True(t, updated.LastGeneratedAt.After(base.Add(time.Hour)))
}

func TestRegenerateRemovesPreviousFileOnPathChange(t *testing.T) {
	repo, _, files, _, regen, _ := newTestFixture()

	repo.addCard(models.MenuCard{
		ID: 4, Name: "Winterkarte",
		PdfPath:         ptrStr("pdf/legacy_card_4.pdf"),
		LastGeneratedAt: ptrTime(time.Now().Add(-time.Hour)),
	}, time.Now())

	_, err := regen.Execute(context.Background(), 4)
	require.NoError(t, err)

	assert.Equal(t, []string{"pdf/legacy_card_4.pdf"}, files.removed)
}

func TestRegenerateKeepsFileWhenPathUnchanged(t *testing.T) {
	repo, _, files, _, regen, _ := newTestFixture()

	repo.addCard(models.MenuCard{
		ID: 5, Name: "Speisekarte",
		PdfPath:         ptrStr("pdf/menu_card_5.pdf"),
		LastGeneratedAt: ptrTime(time.Now().Add(-time.Hour)),
	}, time.Now())

	_, err := regen.Execute(context.Background(), 5)
	require.NoError(t, err)

	assert.Empty(t, files.removed)
}

func TestRegenerateUnknownCard(t *testing.T) {
	_, _, _, _, regen, _ := newTestFixture()

	_, err := regen.Execute(context.Background(), 99)
	assert.Error(t, err)
}

func TestConcurrentRegenerationsSerializedPerCard(t *testing.T) {
	repo, builder, _, _, regen, _ := newTestFixture()

	repo.addCard(models.MenuCard{ID: 1, Name: "A"}, time.Now())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := regen.Execute(context.Background(), 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 8, builder.callsFor(1))
	assert.Equal(t, 1, builder.maxConcurrent)
}

func TestSchedulerStartStop(t *testing.T) {
	repo, builder, _, _, _, _ := newTestFixture()

	tracker := NewStalenessTracker(repo)
	regen := NewRegenerateCardPDF(repo, builder, &mockFileStore{}, zerolog.Nop())
	sched := NewScheduler(5*time.Millisecond, repo, tracker, regen, zerolog.Nop())

	repo.addCard(models.MenuCard{ID: 1, Name: "A"}, time.Now())

	done := make(chan struct{})
	go func() {
		sched.Start(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool {
		return builder.callsFor(1) >= 1
	}, time.Second, 5*time.Millisecond)

	sched.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.False(t, sched.IsRunning())
}

func TestStalenessTrackerLastChangeError(t *testing.T) {
	repo, _, _, tracker, _, _ := newTestFixture()

	now := time.Now()
	repo.addCard(models.MenuCard{
		ID: 1, Name: "A",
		LastGeneratedAt: ptrTime(now),
	}, now)
	repo.failLastChange = errors.New("db down")

	card, err := repo.GetCard(context.Background(), 1)
	require.NoError(t, err)

	_, err = tracker.IsStale(context.Background(), card)
	assert.Error(t, err)
}
