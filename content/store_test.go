package content

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"testing/fstest"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func setupTestStore(t *testing.T, defaults fstest.MapFS, opts ...StoreOption) (*Store, *SQLiteKV) {
	t.Helper()
	kv, err := NewSQLiteKV(openTestDB(t))
	require.NoError(t, err)
	return NewStore(kv, defaults, opts...), kv
}

var testDefaults = fstest.MapFS{
	"careers.json": {Data: []byte(`[{"title":"Go Developer","department":"Engineering","location":"Remote","type":"Full-time","description":"Build things."}]`)},
	"clients.json": {Data: []byte(`not json`)},
}

func TestListFallsBackToDefaults(t *testing.T) {
	s, _ := setupTestStore(t, testDefaults)
	ctx := context.Background()

	careers, err := List[Career](ctx, s, KindCareers)
	require.NoError(t, err)
	require.Len(t, careers, 1)
	assert.Equal(t, "Go Developer", careers[0].Title)

	src, err := s.Source(ctx, KindCareers)
	require.NoError(t, err)
	assert.Equal(t, SourceDefault, src)
}

func TestListMissingDefaultsIsEmpty(t *testing.T) {
	s, _ := setupTestStore(t, testDefaults)

	blogs, err := List[Blog](context.Background(), s, KindBlogs)
	require.NoError(t, err)
	assert.NotNil(t, blogs)
	assert.Empty(t, blogs)
}

func TestListInvalidDefaultsIsEmpty(t *testing.T) {
	s, _ := setupTestStore(t, testDefaults)

	clients, err := List[Client](context.Background(), s, KindClients)
	require.NoError(t, err)
	assert.Empty(t, clients)
}

func TestSaveOverridesDefaults(t *testing.T) {
	var saved []Kind
	s, _ := setupTestStore(t, testDefaults, WithSaveHook(func(k Kind) { saved = append(saved, k) }))
	ctx := context.Background()

	want := []Career{
		{Title: "Data Engineer", Department: "Data", Location: "Berlin", Type: "Contract"},
		{Title: "Designer", Department: "Design", Location: "Remote", Type: "Part-time"},
	}
	require.NoError(t, Save(ctx, s, KindCareers, want))

	got, err := List[Career](ctx, s, KindCareers)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("careers mismatch (-want +got):\n%s", diff)
	}

	src, err := s.Source(ctx, KindCareers)
	require.NoError(t, err)
	assert.Equal(t, SourceStored, src)
	assert.Equal(t, []Kind{KindCareers}, saved)
}

func TestSaveNilStoresEmptyArray(t *testing.T) {
	s, kv := setupTestStore(t, testDefaults)
	ctx := context.Background()

	require.NoError(t, Save[Career](ctx, s, KindCareers, nil))

	raw, err := kv.Get(ctx, KindCareers.StorageKey())
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))

	n, err := s.Count(ctx, KindCareers)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestAppend(t *testing.T) {
	s, _ := setupTestStore(t, testDefaults)
	ctx := context.Background()

	require.NoError(t, Append(ctx, s, KindCareers, Career{Title: "Intern"}))

	careers, err := List[Career](ctx, s, KindCareers)
	require.NoError(t, err)
	require.Len(t, careers, 2)
	assert.Equal(t, "Go Developer", careers[0].Title)
	assert.Equal(t, "Intern", careers[1].Title)
}

func TestResetRestoresDefaults(t *testing.T) {
	s, _ := setupTestStore(t, testDefaults)
	ctx := context.Background()

	require.NoError(t, Save(ctx, s, KindCareers, []Career{}))
	n, err := s.Count(ctx, KindCareers)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, s.Reset(ctx, KindCareers))
	n, err = s.Count(ctx, KindCareers)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	src, err := s.Source(ctx, KindCareers)
	require.NoError(t, err)
	assert.Equal(t, SourceDefault, src)
}

func TestCorruptOverrideFallsBack(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"not json", `{broken`},
		{"not an array", `{"title":"x"}`},
		{"wrong field types", `[{"title":42}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, kv := setupTestStore(t, testDefaults)
			ctx := context.Background()
			require.NoError(t, kv.Put(ctx, KindCareers.StorageKey(), []byte(tt.value)))

			careers, err := List[Career](ctx, s, KindCareers)
			require.NoError(t, err)
			require.Len(t, careers, 1)
			assert.Equal(t, "Go Developer", careers[0].Title)
		})
	}
}

func TestCacheServesUntilInvalidated(t *testing.T) {
	s, kv := setupTestStore(t, testDefaults, WithCacheTTL(time.Hour))
	ctx := context.Background()

	_, err := List[Career](ctx, s, KindCareers)
	require.NoError(t, err)

	// Write behind the store's back; the cached copy is still served.
	require.NoError(t, kv.Put(ctx, KindCareers.StorageKey(), []byte(`[]`)))
	n, err := s.Count(ctx, KindCareers)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	s.Invalidate(KindCareers)
	n, err = s.Count(ctx, KindCareers)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestInvalidateDefaultsRereadsFiles(t *testing.T) {
	defaults := fstest.MapFS{
		"team.json": {Data: []byte(`[{"id":"1","name":"A","role":"R","description":"D","avatar":""}]`)},
	}
	s, _ := setupTestStore(t, defaults, WithCacheTTL(time.Hour))
	ctx := context.Background()

	n, err := s.Count(ctx, KindTeam)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	defaults["team.json"] = &fstest.MapFile{Data: []byte(`[]`)}
	n, err = s.Count(ctx, KindTeam)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	s.InvalidateDefaults()
	n, err = s.Count(ctx, KindTeam)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestListPropagatesKVErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS kv")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM kv WHERE key = ?")).
		WithArgs("admin_careers").
		WillReturnError(errors.New("disk I/O error"))

	kv, err := NewSQLiteKV(db)
	require.NoError(t, err)
	s := NewStore(kv, testDefaults)

	_, err = List[Career](context.Background(), s, KindCareers)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePropagatesKVErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS kv")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT OR REPLACE INTO kv")).
		WillReturnError(errors.New("database is locked"))

	kv, err := NewSQLiteKV(db)
	require.NoError(t, err)
	called := false
	s := NewStore(kv, testDefaults, WithSaveHook(func(Kind) { called = true }))

	err = Save(context.Background(), s, KindCareers, []Career{{Title: "x"}})
	require.Error(t, err)
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBundledDefaultsDecode(t *testing.T) {
	s, _ := setupTestStore(t, nil)
	s.defaults = Defaults()
	ctx := context.Background()

	services, err := List[Service](ctx, s, KindServices)
	require.NoError(t, err)
	assert.NotEmpty(t, services)
	for _, svc := range services {
		assert.Contains(t, ServiceIcons, svc.Icon, svc.Slug)
	}

	_, err = List[Blog](ctx, s, KindBlogs)
	require.NoError(t, err)
	_, err = List[CaseStudy](ctx, s, KindCaseStudies)
	require.NoError(t, err)
	_, err = List[Product](ctx, s, KindProducts)
	require.NoError(t, err)
	_, err = List[TeamMember](ctx, s, KindTeam)
	require.NoError(t, err)

	docs, err := List[LegalDoc](ctx, s, KindLegalDocs)
	require.NoError(t, err)
	assert.Empty(t, docs)
}
