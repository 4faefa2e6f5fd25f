package submission

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indicesp/indicesp/pkg/archival"
	"github.com/indicesp/indicesp/pkg/storage"
)

var fixedNow = time.Date(2025, 1, 12, 15, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, cfg Config) *Service {
	t.Helper()
	if cfg.Store == nil {
		db, err := storage.OpenMemory()
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		cfg.Store = db
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return fixedNow }
	}
	svc, err := NewService(cfg)
	require.NoError(t, err)
	return svc
}

func validForm() Form {
	return Form{
		Supermarket: "Atacadão",
		Product:     "Arroz branco tipo 1 - 5kg",
		Price:       "25,90",
		Brand:       "Tio João",
		SubmittedBy: "João Silva",
	}
}

func TestNewService_RequiresStore(t *testing.T) {
	_, err := NewService(Config{})
	assert.Error(t, err)
}

func TestSubmit_CreatesPending(t *testing.T) {
	var notified []storage.Submission
	svc := newTestService(t, Config{OnSubmitted: func(s storage.Submission) { notified = append(notified, s) }})

	f := validForm()
	f.Location = "  Vila   <i>Madalena</i> "
	sub, err := svc.Submit(context.Background(), f)
	require.NoError(t, err)

	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, storage.StatusPending, sub.Status)
	assert.Equal(t, "Vila Madalena", sub.Location)
	assert.True(t, sub.Price.Equal(decimal.RequireFromString("25.90")))
	assert.Equal(t, fixedNow, sub.SubmittedAt)
	assert.Nil(t, sub.CaptureDate)
	require.Len(t, notified, 1)
	assert.Equal(t, sub.ID, notified[0].ID)

	got, err := svc.Get(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.Product, got.Product)
}

func TestSubmit_RequiredFields(t *testing.T) {
	svc := newTestService(t, Config{})
	for _, f := range []Form{
		{Product: "Leite integral - 1L", Price: "4.89"},
		{Supermarket: "Carrefour", Price: "4.89"},
		{Supermarket: "Carrefour", Product: "Leite integral - 1L", Price: "   "},
	} {
		_, err := svc.Submit(context.Background(), f)
		require.ErrorIs(t, err, ErrMissingRequired)
		var fe *FieldError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "Preencha supermercado, produto e preço", fe.Message())
	}

	pending, err := svc.Pending(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSubmit_CatalogMembership(t *testing.T) {
	svc := newTestService(t, Config{})
	tests := []struct {
		name  string
		edit  func(*Form)
		want  error
		field string
	}{
		{"supermarket", func(f *Form) { f.Supermarket = "Pão de Açúcar" }, ErrUnknownSupermarket, "supermarket"},
		{"supermarket case", func(f *Form) { f.Supermarket = "atacadão" }, ErrUnknownSupermarket, "supermarket"},
		{"product", func(f *Form) { f.Product = "Chocolate" }, ErrUnknownProduct, "product"},
		{"unit", func(f *Form) { f.Unit = "caixa" }, ErrUnknownUnit, "unit"},
		{"price", func(f *Form) { f.Price = "abc" }, ErrInvalidPrice, "price"},
		{"zero price", func(f *Form) { f.Price = "0,00" }, ErrInvalidPrice, "price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.edit(&f)
			_, err := svc.Submit(context.Background(), f)
			require.ErrorIs(t, err, tt.want)
			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestSubmit_ArchivalEvidence(t *testing.T) {
	svc := newTestService(t, Config{})
	ctx := context.Background()

	f := validForm()
	f.ArchivalURL = "https://web.archive.org/web/20241228120000/https://www.atacadao.com.br/arroz"
	sub, err := svc.Submit(ctx, f)
	require.NoError(t, err)
	require.NotNil(t, sub.CaptureDate)
	assert.Equal(t, archival.NewDate(2024, time.December, 28), *sub.CaptureDate)

	f.ArchivalURL = "https://web.archive.org/web/20241221120000/https://www.atacadao.com.br/arroz"
	_, err = svc.Submit(ctx, f)
	require.ErrorIs(t, err, archival.ErrNotLastSaturday)
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "archival_url", fe.Field)
	assert.Equal(t, archival.NotLastSaturday.Message(), fe.Message())

	f.ArchivalURL = "https://web.archive.org/web/20241228120000/https://www.atacadao.com.br/arroz"
	f.Brand = "MarcaDesconhecida"
	_, err = svc.Submit(ctx, f)
	assert.ErrorIs(t, err, archival.ErrBrandNotAccepted)

	// Without archival evidence the brand is free text.
	f.ArchivalURL = ""
	_, err = svc.Submit(ctx, f)
	assert.NoError(t, err)

	pending, err := svc.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

type brandOnlyValidator struct{ brand string }

func (v brandOnlyValidator) Validate(url, brand string) (archival.Date, error) {
	if brand != v.brand {
		return archival.Date{}, archival.ErrBrandNotAccepted
	}
	return archival.NewDate(2024, time.December, 28), nil
}

func TestCheckCapture(t *testing.T) {
	svc := newTestService(t, Config{})

	d, err := svc.CheckCapture("  https://web.archive.org/web/20241228120000/https://www.atacadao.com.br/arroz\n", " Tio João ")
	require.NoError(t, err)
	assert.Equal(t, archival.NewDate(2024, time.December, 28), d)

	_, err = svc.CheckCapture("https://web.archive.org/web/20241221120000/x", "Tio João")
	assert.ErrorIs(t, err, archival.ErrNotLastSaturday)

	custom := newTestService(t, Config{Validator: brandOnlyValidator{brand: "Própria"}})
	_, err = custom.CheckCapture("qualquer", "Própria")
	assert.NoError(t, err)
	_, err = custom.CheckCapture("qualquer", "Tio João")
	assert.ErrorIs(t, err, archival.ErrBrandNotAccepted)
}

func TestModeration(t *testing.T) {
	var decided []storage.Submission
	svc := newTestService(t, Config{OnDecided: func(s storage.Submission) { decided = append(decided, s) }})
	ctx := context.Background()

	a, err := svc.Submit(ctx, validForm())
	require.NoError(t, err)
	b, err := svc.Submit(ctx, validForm())
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, a.ID, " Ana ")
	require.NoError(t, err)
	assert.Equal(t, storage.StatusApproved, approved.Status)
	assert.Equal(t, "Ana", approved.DecidedBy)

	rejected, err := svc.Reject(ctx, b.ID, "Ana", "<b>foto</b> ilegível")
	require.NoError(t, err)
	assert.Equal(t, storage.StatusRejected, rejected.Status)
	assert.Equal(t, "foto ilegível", rejected.RejectionReason)

	_, err = svc.Reject(ctx, a.ID, "Bruno", "")
	assert.ErrorIs(t, err, ErrAlreadyDecided)
	_, err = svc.Approve(ctx, b.ID, "Bruno")
	assert.ErrorIs(t, err, ErrAlreadyDecided)
	_, err = svc.Approve(ctx, "nope", "Bruno")
	assert.ErrorIs(t, err, ErrNotFound)

	require.Len(t, decided, 2)
	assert.Equal(t, a.ID, decided[0].ID)
	assert.Equal(t, b.ID, decided[1].ID)

	pending, err := svc.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	all, err := svc.List(ctx, storage.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

type failingStore struct{ Store }

func (failingStore) InsertSubmission(context.Context, *storage.Submission) error {
	return errors.New("disk full")
}

func TestSubmit_StoreFailureSkipsCallback(t *testing.T) {
	called := false
	svc := newTestService(t, Config{
		Store:       failingStore{},
		OnSubmitted: func(storage.Submission) { called = true },
	})
	_, err := svc.Submit(context.Background(), validForm())
	assert.EqualError(t, err, "disk full")
	assert.False(t, called)
}

func TestSeed(t *testing.T) {
	svc := newTestService(t, Config{})
	ctx := context.Background()

	seeded, err := svc.Seed(ctx)
	require.NoError(t, err)
	require.Len(t, seeded, 3)

	pending, err := svc.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 3)

	// Oldest first.
	assert.Equal(t, "Carlos Lima", pending[0].SubmittedBy)
	assert.Equal(t, "Assaí Atacadista", pending[0].Supermarket)
	assert.Equal(t, "há 6 horas", Age(pending[0].SubmittedAt, fixedNow))
	assert.Equal(t, "Maria Santos", pending[1].SubmittedBy)
	assert.False(t, pending[1].HasImage())
	assert.Equal(t, "João Silva", pending[2].SubmittedBy)
	assert.Equal(t, "Promoção até o final da semana", pending[2].Observations)
	assert.Equal(t, "há 2 horas", Age(pending[2].SubmittedAt, fixedNow))
}
