package swaps

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"skillswap.ru/backend/internal/common"
	"skillswap.ru/backend/internal/config"
	"skillswap.ru/backend/internal/features/accounts"
	"skillswap.ru/backend/internal/features/skills"
)

// fakeWorld — in-memory хранилище для тестов движка обменов.
// AcceptWithTransfer сохраняет контракт атомарности под мьютексом:
// проверка баланса, списание, начисление и смена статуса неделимы.
type fakeWorld struct {
	mu        sync.Mutex
	users     map[int64]*accounts.User
	skills    map[int64]*skills.Skill
	swaps     map[int64]*SwapRequest
	nextID    int64
	conflicts int // сколько раз AcceptWithTransfer вернёт ErrTxConflict
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		users:  make(map[int64]*accounts.User),
		skills: make(map[int64]*skills.Skill),
		swaps:  make(map[int64]*SwapRequest),
	}
}

func (w *fakeWorld) addUser(id int64, credits int64) {
	w.users[id] = &accounts.User{ID: id, Username: fmt.Sprintf("user%d", id), KarmaCredits: credits}
}

func (w *fakeWorld) addSkill(id, ownerID int64, title string) {
	w.skills[id] = &skills.Skill{ID: id, UserID: ownerID, Title: title, Category: skills.CategoryTeach}
}

func (w *fakeWorld) credits(userID int64) int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.users[userID].KarmaCredits
}

type fakeStore struct{ w *fakeWorld }

func (f *fakeStore) Create(_ context.Context, sr *SwapRequest) (*SwapRequest, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	f.w.nextID++
	stored := *sr
	stored.ID = f.w.nextID
	stored.Status = StatusPending
	stored.CreatedAt = time.Now()
	f.w.swaps[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*SwapRequest, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	sr, ok := f.w.swaps[id]
	if !ok {
		return nil, common.ErrSwapNotFound
	}
	out := *sr
	return &out, nil
}

func (f *fakeStore) ListForParticipant(_ context.Context, userID int64) ([]*SwapRequest, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	var out []*SwapRequest
	for _, sr := range f.w.swaps {
		if sr.IsParticipant(userID) {
			cp := *sr
			out = append(out, &cp)
		}
	}
	// Та же сортировка, что и в SQL: свежие первыми
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id int64, status string) (*SwapRequest, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	sr, ok := f.w.swaps[id]
	if !ok {
		return nil, common.ErrSwapNotFound
	}
	sr.Status = status
	sr.UpdatedAt = time.Now()
	out := *sr
	return &out, nil
}

func (f *fakeStore) AcceptWithTransfer(_ context.Context, id int64) (*SwapRequest, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()

	if f.w.conflicts > 0 {
		f.w.conflicts--
		return nil, fmt.Errorf("имитация гонки: %w", common.ErrTxConflict)
	}

	sr, ok := f.w.swaps[id]
	if !ok {
		return nil, common.ErrSwapNotFound
	}
	if sr.Status == StatusAccepted {
		out := *sr
		return &out, nil
	}

	requester := f.w.users[sr.RequesterID]
	provider := f.w.users[sr.ProviderID]
	if requester.KarmaCredits < 1 {
		return nil, common.ErrInsufficientCredits
	}

	requester.KarmaCredits--
	provider.KarmaCredits++
	sr.Status = StatusAccepted
	sr.UpdatedAt = time.Now()
	out := *sr
	return &out, nil
}

func (f *fakeStore) ExpirePending(_ context.Context, olderThan time.Time) (int64, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	var n int64
	for _, sr := range f.w.swaps {
		if sr.Status == StatusPending && sr.CreatedAt.Before(olderThan) {
			sr.Status = StatusRejected
			n++
		}
	}
	return n, nil
}

type fakeUsers struct{ w *fakeWorld }

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*accounts.User, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	u, ok := f.w.users[id]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

type fakeCatalog struct{ w *fakeWorld }

func (f *fakeCatalog) GetByID(_ context.Context, id int64) (*skills.Skill, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	s, ok := f.w.skills[id]
	if !ok {
		return nil, common.ErrSkillNotFound
	}
	out := *s
	return &out, nil
}

// recordNotifier запоминает отправленные уведомления.
type recordNotifier struct {
	mu   sync.Mutex
	sent map[int64][]string
}

func (n *recordNotifier) Send(userID int64, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sent == nil {
		n.sent = make(map[int64][]string)
	}
	n.sent[userID] = append(n.sent[userID], text)
}

func newTestService(w *fakeWorld) (*Service, *recordNotifier) {
	cfg := &config.Config{
		StartingCredits:    5,
		SwapAcceptRetries:  3,
		SwapPendingTTLDays: 14,
	}
	notifier := &recordNotifier{}
	svc := NewService(&fakeStore{w}, &fakeUsers{w}, &fakeCatalog{w}, notifier, cfg)
	return svc, notifier
}

func TestCreateSwapRequest(t *testing.T) {
	w := newFakeWorld()
	w.addUser(1, 5)
	w.addUser(2, 5)
	w.addSkill(10, 2, "Гитара")
	svc, notifier := newTestService(w)

	sr, err := svc.Create(context.Background(), 1, 2, 10, "")
	require.NoError(t, err)
	require.Equal(t, StatusPending, sr.Status)
	require.Equal(t, int64(1), sr.RequesterID)
	require.Equal(t, int64(2), sr.ProviderID)
	require.Equal(t, DefaultMessage, sr.Message)

	// Балансы не тронуты
	require.Equal(t, int64(5), w.credits(1))
	require.Equal(t, int64(5), w.credits(2))

	// Провайдер получил уведомление с названием навыка и датой запроса
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	require.Len(t, notifier.sent[2], 1)
	require.Contains(t, notifier.sent[2][0], "Гитара")
	require.Contains(t, notifier.sent[2][0], common.FormatDateTime(sr.CreatedAt))
}

func TestCreateSelfSwapRejected(t *testing.T) {
	w := newFakeWorld()
	w.addUser(1, 5)
	w.addSkill(10, 1, "Гитара")
	svc, _ := newTestService(w)

	_, err := svc.Create(context.Background(), 1, 1, 10, "")
	require.ErrorIs(t, err, common.ErrSelfSwap)
}

func TestCreateSkillNotOwnedByProvider(t *testing.T) {
	w := newFakeWorld()
	w.addUser(1, 5)
	w.addUser(2, 5)
	w.addUser(3, 5)
	w.addSkill(10, 3, "Гитара") // навык принадлежит третьему пользователю
	svc, _ := newTestService(w)

	_, err := svc.Create(context.Background(), 1, 2, 10, "")
	require.ErrorIs(t, err, common.ErrSkillNotOwned)
}

func TestCreateProviderMissing(t *testing.T) {
	w := newFakeWorld()
	w.addUser(1, 5)
	svc, _ := newTestService(w)

	_, err := svc.Create(context.Background(), 1, 99, 10, "")
	require.ErrorIs(t, err, common.ErrUserNotFound)
}

func mustCreateSwap(t *testing.T, svc *Service, w *fakeWorld, requester, provider, skill int64) *SwapRequest {
	t.Helper()
	sr, err := svc.Create(context.Background(), requester, provider, skill, "давай меняться")
	require.NoError(t, err)
	return sr
}

func TestAcceptTransfersOneCredit(t *testing.T) {
	w := newFakeWorld()
	w.addUser(1, 3) // requester
	w.addUser(2, 7) // provider
	w.addSkill(10, 2, "Гитара")
	svc, notifier := newTestService(w)
	sr := mustCreateSwap(t, svc, w, 1, 2, 10)

	updated, err := svc.UpdateStatus(context.Background(), 2, sr.ID, StatusAccepted)
	require.NoError(t, err)
	require.Equal(t, StatusAccepted, updated.Status)
	require.Equal(t, int64(2), w.credits(1))
	require.Equal(t, int64(8), w.credits(2))

	// Инициатор узнал о принятии; в тексте — остаток с верной формой слова
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	require.Len(t, notifier.sent[1], 1)
	require.Contains(t, notifier.sent[1][0], "осталось 2 кредита")
}

func TestAcceptInsufficientCredits(t *testing.T) {
	w := newFakeWorld()
	w.addUser(1, 0) // у инициатора пусто
	w.addUser(2, 7)
	w.addSkill(10, 2, "Гитара")
	svc, _ := newTestService(w)
	sr := mustCreateSwap(t, svc, w, 1, 2, 10)

	_, err := svc.UpdateStatus(context.Background(), 2, sr.ID, StatusAccepted)
	require.ErrorIs(t, err, common.ErrInsufficientCredits)

	// Ни балансы, ни статус не изменились
	require.Equal(t, int64(0), w.credits(1))
	require.Equal(t, int64(7), w.credits(2))
	got, err := svc.GetForUser(context.Background(), 1, sr.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, got.Status)
}

func TestAcceptIsIdempotent(t *testing.T) {
	w := newFakeWorld()
	w.addUser(1, 5)
	w.addUser(2, 5)
	w.addSkill(10, 2, "Гитара")
	svc, _ := newTestService(w)
	sr := mustCreateSwap(t, svc, w, 1, 2, 10)

	_, err := svc.UpdateStatus(context.Background(), 2, sr.ID, StatusAccepted)
	require.NoError(t, err)

	// Повторное принятие — перевод не повторяется
	updated, err := svc.UpdateStatus(context.Background(), 2, sr.ID, StatusAccepted)
	require.NoError(t, err)
	require.Equal(t, StatusAccepted, updated.Status)
	require.Equal(t, int64(4), w.credits(1))
	require.Equal(t, int64(6), w.credits(2))
}

func TestRejectDoesNotMoveCredits(t *testing.T) {
	w := newFakeWorld()
	w.addUser(1, 5)
	w.addUser(2, 5)
	w.addSkill(10, 2, "Гитара")
	svc, _ := newTestService(w)
	sr := mustCreateSwap(t, svc, w, 1, 2, 10)

	updated, err := svc.UpdateStatus(context.Background(), 2, sr.ID, StatusRejected)
	require.NoError(t, err)
	require.Equal(t, StatusRejected, updated.Status)
	require.Equal(t, int64(5), w.credits(1))
	require.Equal(t, int64(5), w.credits(2))
}

func TestUpdateStatusInvalidValue(t *testing.T) {
	w := newFakeWorld()
	w.addUser(1, 5)
	w.addUser(2, 5)
	w.addSkill(10, 2, "Гитара")
	svc, _ := newTestService(w)
	sr := mustCreateSwap(t, svc, w, 1, 2, 10)

	_, err := svc.UpdateStatus(context.Background(), 2, sr.ID, "CANCELLED")
	require.ErrorIs(t, err, common.ErrInvalidStatus)
}

func TestOutsiderCannotSeeOrUpdateSwap(t *testing.T) {
	w := newFakeWorld()
	w.addUser(1, 5)
	w.addUser(2, 5)
	w.addUser(3, 5) // посторонний
	w.addSkill(10, 2, "Гитара")
	svc, _ := newTestService(w)
	sr := mustCreateSwap(t, svc, w, 1, 2, 10)

	_, err := svc.UpdateStatus(context.Background(), 3, sr.ID, StatusAccepted)
	require.ErrorIs(t, err, common.ErrNotParticipant)

	_, err = svc.GetForUser(context.Background(), 3, sr.ID)
	require.ErrorIs(t, err, common.ErrNotParticipant)

	// И в списке постороннего обмен не появляется
	list, err := svc.ListForUser(context.Background(), 3)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestListForUserNewestFirst(t *testing.T) {
	w := newFakeWorld()
	w.addUser(1, 5)
	w.addUser(2, 5)
	w.addSkill(10, 2, "Гитара")
	svc, _ := newTestService(w)

	first := mustCreateSwap(t, svc, w, 1, 2, 10)
	second := mustCreateSwap(t, svc, w, 1, 2, 10)

	// Состариваем первый запрос, чтобы порядок определялся временем создания
	w.mu.Lock()
	w.swaps[first.ID].CreatedAt = time.Now().Add(-time.Hour)
	w.mu.Unlock()

	list, err := svc.ListForUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, second.ID, list[0].ID)
	require.Equal(t, first.ID, list[1].ID)
}

func TestUpdateStatusSwapMissing(t *testing.T) {
	w := newFakeWorld()
	w.addUser(1, 5)
	svc, _ := newTestService(w)

	_, err := svc.UpdateStatus(context.Background(), 1, 404, StatusAccepted)
	require.ErrorIs(t, err, common.ErrSwapNotFound)
}

func TestAcceptRetriesOnTxConflict(t *testing.T) {
	w := newFakeWorld()
	w.addUser(1, 5)
	w.addUser(2, 5)
	w.addSkill(10, 2, "Гитара")
	svc, _ := newTestService(w)
	sr := mustCreateSwap(t, svc, w, 1, 2, 10)

	// Две первые попытки упираются в конфликт, третья проходит
	w.mu.Lock()
	w.conflicts = 2
	w.mu.Unlock()

	updated, err := svc.UpdateStatus(context.Background(), 2, sr.ID, StatusAccepted)
	require.NoError(t, err)
	require.Equal(t, StatusAccepted, updated.Status)
	require.Equal(t, int64(4), w.credits(1))
}

func TestAcceptGivesUpAfterRetries(t *testing.T) {
	w := newFakeWorld()
	w.addUser(1, 5)
	w.addUser(2, 5)
	w.addSkill(10, 2, "Гитара")
	svc, _ := newTestService(w)
	sr := mustCreateSwap(t, svc, w, 1, 2, 10)

	w.mu.Lock()
	w.conflicts = 100 // конфликт не рассасывается
	w.mu.Unlock()

	_, err := svc.UpdateStatus(context.Background(), 2, sr.ID, StatusAccepted)
	require.ErrorIs(t, err, common.ErrTxConflict)
}

// TestConcurrentAcceptsNeverOverdraw — главное свойство ядра: N одновременных
// принятий при балансе b < N дают ровно b переводов и N-b отказов,
// баланс никогда не уходит в минус.
func TestConcurrentAcceptsNeverOverdraw(t *testing.T) {
	const n = 8
	const startBalance = 3

	w := newFakeWorld()
	w.addUser(1, startBalance) // общий инициатор
	svc, _ := newTestService(w)

	// n разных провайдеров, по обмену с каждым
	swapIDs := make([]int64, 0, n)
	for i := int64(0); i < n; i++ {
		providerID := 100 + i
		skillID := 200 + i
		w.addUser(providerID, 0)
		w.addSkill(skillID, providerID, "Навык")
		sr := mustCreateSwap(t, svc, w, 1, providerID, skillID)
		swapIDs = append(swapIDs, sr.ID)
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Принимает провайдер соответствующего обмена
			_, errs[i] = svc.UpdateStatus(context.Background(), 100+int64(i), swapIDs[i], StatusAccepted)
		}(i)
	}
	wg.Wait()

	var accepted, refused int
	for _, err := range errs {
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, common.ErrInsufficientCredits):
			refused++
		default:
			t.Fatalf("неожиданная ошибка: %v", err)
		}
	}

	require.Equal(t, startBalance, accepted)
	require.Equal(t, n-startBalance, refused)
	require.Equal(t, int64(0), w.credits(1))

	// Сумма кредитов в системе сохранилась
	var total int64
	w.mu.Lock()
	for _, u := range w.users {
		require.GreaterOrEqual(t, u.KarmaCredits, int64(0))
		total += u.KarmaCredits
	}
	w.mu.Unlock()
	require.Equal(t, int64(startBalance), total)
}

// TestEndToEndScenario — сценарий из жизни: A публикует навык, B просит обмен,
// A принимает (A +1, B -1); затем C просит обмен, A отклоняет — балансы на месте.
func TestEndToEndScenario(t *testing.T) {
	w := newFakeWorld()
	w.addUser(1, 5) // A — провайдер
	w.addUser(2, 5) // B — инициатор
	w.addUser(3, 5) // C — второй инициатор
	w.addSkill(10, 1, "Испанский язык")
	svc, _ := newTestService(w)

	// B просит обмен у A
	srB := mustCreateSwap(t, svc, w, 2, 1, 10)
	// A принимает: B платит, A получает
	_, err := svc.UpdateStatus(context.Background(), 1, srB.ID, StatusAccepted)
	require.NoError(t, err)
	require.Equal(t, int64(6), w.credits(1))
	require.Equal(t, int64(4), w.credits(2))

	// C просит обмен, A отклоняет — ничего не двигается
	srC := mustCreateSwap(t, svc, w, 3, 1, 10)
	updated, err := svc.UpdateStatus(context.Background(), 1, srC.ID, StatusRejected)
	require.NoError(t, err)
	require.Equal(t, StatusRejected, updated.Status)
	require.Equal(t, int64(6), w.credits(1))
	require.Equal(t, int64(5), w.credits(3))
}

func TestExpireStalePending(t *testing.T) {
	w := newFakeWorld()
	w.addUser(1, 5)
	w.addUser(2, 5)
	w.addSkill(10, 2, "Гитара")
	svc, _ := newTestService(w)
	sr := mustCreateSwap(t, svc, w, 1, 2, 10)

	// Состариваем запрос вручную
	w.mu.Lock()
	w.swaps[sr.ID].CreatedAt = time.Now().AddDate(0, 0, -30)
	w.mu.Unlock()

	n, err := svc.ExpireStalePending(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	got, err := svc.GetForUser(context.Background(), 1, sr.ID)
	require.NoError(t, err)
	require.Equal(t, StatusRejected, got.Status)
	require.Equal(t, int64(5), w.credits(1))
}
