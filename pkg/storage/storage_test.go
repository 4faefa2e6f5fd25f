package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indicesp/indicesp/pkg/archival"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func mkSubmission(id, market, location string, at time.Time) *Submission {
	return &Submission{
		ID:          id,
		Supermarket: market,
		Product:     "Arroz branco tipo 1 - 5kg",
		Price:       decimal.RequireFromString("25.90"),
		Location:    location,
		SubmittedBy: "João Silva",
		SubmittedAt: at,
		Status:      StatusPending,
	}
}

func TestInsertAndGet(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	at := time.Date(2025, 1, 12, 10, 0, 0, 0, time.UTC)

	s := mkSubmission("a", "Atacadão", "Vila Madalena", at)
	cd := archival.NewDate(2024, time.December, 28)
	s.Brand = "Tio João"
	s.ArchivalURL = "https://web.archive.org/web/20241228120000/https://www.atacadao.com.br/arroz"
	s.CaptureDate = &cd
	s.ImageRef = "etiqueta.jpg"
	require.NoError(t, db.InsertSubmission(ctx, s))

	got, err := db.GetSubmission(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Atacadão", got.Supermarket)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("25.9")))
	assert.Equal(t, at, got.SubmittedAt)
	require.NotNil(t, got.CaptureDate)
	assert.Equal(t, cd, *got.CaptureDate)
	assert.Equal(t, StatusPending, got.Status)
	assert.True(t, got.HasImage())
	assert.True(t, got.DecidedAt.IsZero())
}

func TestGetSubmission_NotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := db.GetSubmission(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsertSubmission_RejectsBadInput(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	s := mkSubmission("", "Carrefour", "", time.Now())
	assert.Error(t, db.InsertSubmission(ctx, s))

	s = mkSubmission("x", "Carrefour", "", time.Now())
	s.Status = "archived"
	assert.Error(t, db.InsertSubmission(ctx, s))

	s = mkSubmission("dup", "Carrefour", "", time.Now())
	require.NoError(t, db.InsertSubmission(ctx, s))
	assert.Error(t, db.InsertSubmission(ctx, s))
}

func TestListSubmissions_FiltersAndOrder(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 12, 8, 0, 0, 0, time.UTC)

	require.NoError(t, db.InsertSubmission(ctx, mkSubmission("late", "Carrefour", "Pinheiros", base.Add(2*time.Hour))))
	require.NoError(t, db.InsertSubmission(ctx, mkSubmission("early", "Atacadão", "Liberdade", base)))
	require.NoError(t, db.InsertSubmission(ctx, mkSubmission("mid", "Carrefour", "Pinheiros", base.Add(time.Hour))))
	_, err := db.DecideSubmission(ctx, "mid", StatusApproved, "mod", "", base.Add(3*time.Hour))
	require.NoError(t, err)

	all, err := db.ListSubmissions(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"early", "mid", "late"}, []string{all[0].ID, all[1].ID, all[2].ID})

	pending, err := db.ListSubmissions(ctx, ListOptions{Status: StatusPending, Supermarket: "Carrefour"})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "late", pending[0].ID)

	limited, err := db.ListSubmissions(ctx, ListOptions{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	since, err := db.ListSubmissions(ctx, ListOptions{Since: base.Add(30 * time.Minute)})
	require.NoError(t, err)
	assert.Len(t, since, 2)

	none, err := db.ListSubmissions(ctx, ListOptions{Supermarket: "Dia"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestDecideSubmission_Transitions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	at := time.Date(2025, 1, 12, 12, 0, 0, 0, time.UTC)

	require.NoError(t, db.InsertSubmission(ctx, mkSubmission("a", "Atacadão", "", at)))
	require.NoError(t, db.InsertSubmission(ctx, mkSubmission("b", "Atacadão", "", at)))

	approved, err := db.DecideSubmission(ctx, "a", StatusApproved, "moderadora", "ignored reason", at.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	assert.Equal(t, "moderadora", approved.DecidedBy)
	assert.Empty(t, approved.RejectionReason)
	assert.Equal(t, at.Add(time.Minute), approved.DecidedAt)

	rejected, err := db.DecideSubmission(ctx, "b", StatusRejected, "moderadora", "preço ilegível", at.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)
	assert.Equal(t, "preço ilegível", rejected.RejectionReason)

	// Terminal states stay put.
	_, err = db.DecideSubmission(ctx, "a", StatusRejected, "outro", "", at.Add(3*time.Minute))
	assert.ErrorIs(t, err, ErrAlreadyDecided)
	_, err = db.DecideSubmission(ctx, "b", StatusApproved, "outro", "", at.Add(3*time.Minute))
	assert.ErrorIs(t, err, ErrAlreadyDecided)

	got, err := db.GetSubmission(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)
	assert.Equal(t, "moderadora", got.DecidedBy)

	_, err = db.DecideSubmission(ctx, "missing", StatusApproved, "", "", at)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = db.DecideSubmission(ctx, "a", StatusPending, "", "", at)
	assert.Error(t, err)
}

func TestEventsAndStats(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	at := time.Date(2025, 1, 12, 12, 0, 0, 0, time.UTC)

	require.NoError(t, db.InsertSubmission(ctx, mkSubmission("a", "Atacadão", "Vila Madalena", at)))
	require.NoError(t, db.InsertSubmission(ctx, mkSubmission("b", "Atacadão", "Pinheiros", at.Add(time.Second))))
	require.NoError(t, db.InsertSubmission(ctx, mkSubmission("c", "Carrefour", "", at.Add(2*time.Second))))
	_, err := db.DecideSubmission(ctx, "a", StatusApproved, "m", "", at.Add(time.Hour))
	require.NoError(t, err)
	_, err = db.DecideSubmission(ctx, "c", StatusRejected, "m", "duplicado", at.Add(2*time.Hour))
	require.NoError(t, err)

	events, err := db.ListRecentEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 5)
	assert.Equal(t, "rejected", events[0].EventType)
	assert.Equal(t, "duplicado", events[0].Reason)
	assert.Equal(t, "approved", events[1].EventType)

	stats, err := db.QueueStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, QueueStats{Supermarket: "Atacadão", Pending: 1, Approved: 1, Locations: 2}, stats[0])
	assert.Equal(t, QueueStats{Supermarket: "Carrefour", Rejected: 1}, stats[1])
	assert.Equal(t, 2, stats[0].Total())

	counts, err := db.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[Status]int{StatusPending: 1, StatusApproved: 1, StatusRejected: 1}, counts)
}

func TestOpenMemory_Isolated(t *testing.T) {
	a := openTestDB(t)
	b := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, a.InsertSubmission(ctx, mkSubmission("only-a", "Carrefour", "", time.Now())))
	_, err := b.GetSubmission(ctx, "only-a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransition(StatusApproved))
	assert.True(t, StatusPending.CanTransition(StatusRejected))
	assert.False(t, StatusPending.CanTransition(StatusPending))
	assert.False(t, StatusApproved.CanTransition(StatusRejected))
	assert.False(t, StatusRejected.CanTransition(StatusApproved))
	assert.False(t, StatusPending.Terminal())
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "Promoção até o final da semana", SanitizeText("  <b>Promoção</b>   até o final\tda semana "))
	assert.Equal(t, "linha 1\nlinha 2", SanitizeText("linha 1\r\n\r\n<script>x</script>linha 2"))
	assert.Equal(t, "Vila Madalena", NormalizeText("  Vila   Madalena "))
}
