package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"cupboard/internal/funding"
	"cupboard/internal/utils"
	"cupboard/pkg/types"

	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// In-memory stores backing handler tests. The checkout service and
// progress calculator on top of them are the real ones.

type fakeNeedStore struct {
	needs map[string]*types.Need
}

func newFakeNeedStore() *fakeNeedStore {
	return &fakeNeedStore{needs: map[string]*types.Need{}}
}

func (f *fakeNeedStore) Need(_ context.Context, needID string) (*types.Need, error) {
	need, ok := f.needs[needID]
	if !ok {
		return nil, types.ErrNeedNotFound
	}
	cp := *need
	return &cp, nil
}

func (f *fakeNeedStore) sorted(filter func(*types.Need) bool) []*types.Need {
	out := make([]*types.Need, 0, len(f.needs))
	for _, need := range f.needs {
		if filter == nil || filter(need) {
			cp := *need
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		if a.IsTimeSensitive != b.IsTimeSensitive {
			return a.IsTimeSensitive
		}
		if a.FrequencyCount != b.FrequencyCount {
			return a.FrequencyCount > b.FrequencyCount
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return out
}

func (f *fakeNeedStore) Needs(_ context.Context) ([]*types.Need, error) {
	return f.sorted(nil), nil
}

func (f *fakeNeedStore) NeedsByCategory(_ context.Context, category types.Category) ([]*types.Need, error) {
	return f.sorted(func(n *types.Need) bool { return n.Category == category }), nil
}

func (f *fakeNeedStore) SearchNeeds(_ context.Context, q string) ([]*types.Need, error) {
	q = strings.ToLower(q)
	return f.sorted(func(n *types.Need) bool {
		return strings.Contains(strings.ToLower(n.Name), q) ||
			strings.Contains(strings.ToLower(n.Description), q)
	}), nil
}

func (f *fakeNeedStore) CreateNeed(_ context.Context, need *types.Need) error {
	now := time.Now()
	need.ID = utils.NanoID()
	need.CreatedAt = now
	need.UpdatedAt = now
	cp := *need
	f.needs[need.ID] = &cp
	return nil
}

func (f *fakeNeedStore) UpdateNeed(_ context.Context, needID string, need *types.Need) error {
	if _, ok := f.needs[needID]; !ok {
		return types.ErrNeedNotFound
	}
	need.ID = needID
	need.UpdatedAt = time.Now()
	cp := *need
	f.needs[needID] = &cp
	return nil
}

func (f *fakeNeedStore) DeleteNeed(_ context.Context, needID string) error {
	if _, ok := f.needs[needID]; !ok {
		return types.ErrNeedNotFound
	}
	delete(f.needs, needID)
	return nil
}

func (f *fakeNeedStore) Decrement(_ context.Context, needID string, amount, frequencyDelta int) error {
	need, ok := f.needs[needID]
	if !ok {
		return types.ErrNeedNotFound
	}
	if need.Quantity < amount {
		return &types.InsufficientQuantityError{NeedName: need.Name}
	}
	need.Quantity -= amount
	need.FrequencyCount += frequencyDelta
	return nil
}

type fakeBasketStore struct {
	needs *fakeNeedStore
	items []*types.BasketItem
}

func (f *fakeBasketStore) ItemsByUser(_ context.Context, username string) ([]*types.BasketItem, error) {
	out := make([]*types.BasketItem, 0)
	for _, item := range f.items {
		if item.Username == username {
			cp := *item
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeBasketStore) LinesByUser(ctx context.Context, username string) ([]*types.BasketLine, error) {
	items, _ := f.ItemsByUser(ctx, username)
	out := make([]*types.BasketLine, 0, len(items))
	for _, item := range items {
		need, ok := f.needs.needs[item.NeedID]
		if !ok {
			continue
		}
		out = append(out, &types.BasketLine{
			ID:              item.ID,
			NeedID:          item.NeedID,
			Quantity:        item.Quantity,
			CreatedAt:       item.CreatedAt,
			Name:            need.Name,
			Description:     need.Description,
			Cost:            need.Cost,
			Category:        need.Category,
			Priority:        need.Priority,
			IsTimeSensitive: need.IsTimeSensitive,
			FrequencyCount:  need.FrequencyCount,
		})
	}
	return out, nil
}

func (f *fakeBasketStore) Item(_ context.Context, itemID, username string) (*types.BasketItem, error) {
	for _, item := range f.items {
		if item.ID == itemID && item.Username == username {
			cp := *item
			return &cp, nil
		}
	}
	return nil, types.ErrBasketItemNotFound
}

func (f *fakeBasketStore) Upsert(_ context.Context, username, needID string, quantity int) error {
	for _, item := range f.items {
		if item.Username == username && item.NeedID == needID {
			item.Quantity = quantity
			item.UpdatedAt = time.Now()
			return nil
		}
	}
	now := time.Now()
	f.items = append(f.items, &types.BasketItem{
		ID:        utils.NanoID(),
		Username:  username,
		NeedID:    needID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return nil
}

func (f *fakeBasketStore) UpdateQuantity(_ context.Context, itemID, username string, quantity int) error {
	for _, item := range f.items {
		if item.ID == itemID && item.Username == username {
			item.Quantity = quantity
			return nil
		}
	}
	return types.ErrBasketItemNotFound
}

func (f *fakeBasketStore) Remove(_ context.Context, itemID, username string) error {
	for i, item := range f.items {
		if item.ID == itemID && item.Username == username {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return types.ErrBasketItemNotFound
}

func (f *fakeBasketStore) ClearForUser(_ context.Context, username string) error {
	kept := f.items[:0]
	for _, item := range f.items {
		if item.Username != username {
			kept = append(kept, item)
		}
	}
	f.items = kept
	return nil
}

type fakeUserStore struct {
	users     map[string]*types.User
	createErr error
}

func (f *fakeUserStore) UserByUsername(_ context.Context, username string) (*types.User, error) {
	user, ok := f.users[username]
	if !ok {
		return nil, types.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *types.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.users[user.Username]; ok {
		return types.ErrUsernameTaken
	}
	cp := *user
	f.users[user.Username] = &cp
	return nil
}

func (f *fakeUserStore) TouchLastLogin(_ context.Context, username string) error {
	if user, ok := f.users[username]; ok {
		user.LastLogin = utils.TimePtr(time.Now())
	}
	return nil
}

type fakeLedger struct {
	txns []*types.Transaction
}

func (f *fakeLedger) Record(_ context.Context, txn *types.Transaction) error {
	cp := *txn
	f.txns = append(f.txns, &cp)
	return nil
}

func (f *fakeLedger) TotalRaisedByNeed(_ context.Context, needID string) (float64, error) {
	total := 0.0
	for _, txn := range f.txns {
		if txn.NeedID == needID {
			total += txn.TotalCost
		}
	}
	return total, nil
}

type testEnv struct {
	svc    *Service
	needs  *fakeNeedStore
	basket *fakeBasketStore
	users  *fakeUserStore
	ledger *fakeLedger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	config := &types.Config{
		Environment:      "development",
		ServerPort:       0,
		CookieName:       "cupboard_session",
		SessionMaxAgeSec: 3600,
		CookieHashKey:    base64.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)),
		CookieBlockKey:   base64.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)),
	}

	needs := newFakeNeedStore()
	basket := &fakeBasketStore{needs: needs}
	users := &fakeUserStore{users: map[string]*types.User{}}
	ledger := &fakeLedger{}

	checkout := funding.NewCheckoutService(logger, needs, basket, ledger)
	progress := funding.NewCalculator(ledger)

	svc, err := New(config, logger, needs, basket, users, checkout, progress)
	require.NoError(t, err)

	return &testEnv{svc: svc, needs: needs, basket: basket, users: users, ledger: ledger}
}

func (e *testEnv) addUser(t *testing.T, username, password string, role types.Role) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	e.users.users[username] = &types.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}
}

// login runs the real login handler and returns the session cookie.
func (e *testEnv) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()

	rr := e.do(t, http.MethodPost, "/auth/login", map[string]any{
		"username": username,
		"password": password,
	}, nil)
	require.Equal(t, http.StatusOK, rr.Code, "login failed: %s", rr.Body.String())

	res := rr.Result()
	defer res.Body.Close()
	for _, cookie := range res.Cookies() {
		if cookie.Name == "cupboard_session" {
			return cookie
		}
	}
	t.Fatal("no session cookie set by login")
	return nil
}

func (e *testEnv) do(t *testing.T, method, target string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(data))
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rr := httptest.NewRecorder()
	e.svc.Handler().ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rr.Body).Decode(dst))
}
