package images

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/imaijo201-star/real-estate-mg/internal/domain"
	"github.com/imaijo201-star/real-estate-mg/internal/infrastructure/storage"
	"github.com/imaijo201-star/real-estate-mg/internal/pkg/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*Service, *gorm.DB, *storage.Local) {
	t.Helper()
	db := testutil.NewDB(t)
	store := testutil.NewStore(t)
	return &Service{DB: db, Store: store}, db, store
}

func createProperty(t *testing.T, db *gorm.DB, owner uuid.UUID) *domain.Property {
	t.Helper()
	p := &domain.Property{
		Title:         "테스트 매물",
		TradeType:     domain.TradeSale,
		Address:       "서울시 강남구",
		ExclusiveArea: 59,
		PropertyType:  domain.TypeApartment,
		Rooms:         2,
		Bathrooms:     1,
		Status:        domain.StatusAvailable,
		UserID:        owner,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func gallery(t *testing.T, db *gorm.DB, propertyID uint) []domain.Image {
	t.Helper()
	var imgs []domain.Image
	require.NoError(t, db.Where("property_id = ?", propertyID).Order("sort_order ASC, id ASC").Find(&imgs).Error)
	return imgs
}

func TestFileName(t *testing.T) {
	s := &Service{Now: func() time.Time { return time.UnixMilli(1700000000000) }}
	name := s.FileName("My Photo (1).JPG")
	assert.True(t, strings.HasPrefix(name, "1700000000000-"), name)
	assert.True(t, strings.HasSuffix(name, "-my-photo-1.jpg"), name)

	name = s.FileName("거실.png")
	assert.True(t, strings.HasSuffix(name, "-image.png"), name)
}

func TestStageUpload_SavesToTemp(t *testing.T) {
	s, _, store := newService(t)
	ctx := context.Background()

	urls, err := s.StageUpload(ctx, []Upload{
		{Name: "a.jpg", ContentType: "image/jpeg", Size: 3, Content: strings.NewReader("abc")},
		{Name: "b.webp", ContentType: "image/webp", Size: 2, Content: strings.NewReader("de")},
	})
	require.NoError(t, err)
	require.Len(t, urls, 2)
	for _, u := range urls {
		assert.True(t, storage.IsTemp(u), u)
		ok, err := store.Exists(ctx, u)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestStageUpload_RejectsWholeBatch(t *testing.T) {
	s, _, _ := newService(t)

	big := bytes.Repeat([]byte("x"), 6<<20)
	_, err := s.StageUpload(context.Background(), []Upload{
		{Name: "ok.png", ContentType: "image/png", Size: 1, Content: strings.NewReader("x")},
		{Name: "big.jpg", ContentType: "image/jpeg", Size: int64(len(big)), Content: bytes.NewReader(big)},
		{Name: "doc.pdf", ContentType: "application/pdf", Size: 1, Content: strings.NewReader("x")},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Details, 2)
	assert.True(t, strings.HasPrefix(verr.Details[0], "파일 2:"))
	assert.True(t, strings.HasPrefix(verr.Details[1], "파일 3:"))
}

func TestStageUpload_EnforcesSizeWhileReading(t *testing.T) {
	s, _, _ := newService(t)
	big := bytes.Repeat([]byte("x"), 6<<20)
	_, err := s.StageUpload(context.Background(), []Upload{
		{Name: "lies.jpg", ContentType: "image/jpeg", Size: 10, Content: bytes.NewReader(big)},
	})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestStageUpload_Empty(t *testing.T) {
	s, _, _ := newService(t)
	_, err := s.StageUpload(context.Background(), nil)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestAttachToProperty_PromotesFiles(t *testing.T) {
	s, db, store := newService(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "admin")
	p := createProperty(t, db, owner.ID)

	a := testutil.StageFile(t, store, "a.jpg")
	b := testutil.StageFile(t, store, "b.jpg")

	urls, err := s.AttachToProperty(ctx, p.ID, []string{a, b}, []int{0, 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/properties/1/a.jpg", "/uploads/properties/1/b.jpg"}, urls)

	imgs := gallery(t, db, p.ID)
	require.Len(t, imgs, 2)
	assert.Equal(t, urls[0], imgs[0].URL)
	assert.False(t, imgs[0].IsMain)
	assert.True(t, imgs[1].IsMain)

	ok, _ := store.Exists(ctx, a)
	assert.False(t, ok)
}

func TestAttachToProperty_RejectsForeignURL(t *testing.T) {
	s, db, _ := newService(t)
	owner := testutil.CreateUser(t, db, "admin")
	p := createProperty(t, db, owner.ID)

	_, err := s.AttachToProperty(context.Background(), p.ID, []string{"https://evil.example/x.jpg"}, nil, 0)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, gallery(t, db, p.ID))
}

func TestAttachToProperty_RejectsOtherPropertysFile(t *testing.T) {
	s, db, store := newService(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "admin")
	other := testutil.CreateUser(t, db, "manager")
	a := createProperty(t, db, owner.ID)
	b := createProperty(t, db, other.ID)

	urls, err := s.AttachToProperty(ctx, a.ID, []string{testutil.StageFile(t, store, "a.jpg")}, nil, 0)
	require.NoError(t, err)
	aURL := urls[0]

	_, err = s.AttachToProperty(ctx, b.ID, []string{aURL}, nil, 0)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, gallery(t, db, b.ID))

	err = s.Reconcile(ctx, b.ID, []Desired{{URL: aURL, IsMain: true}})
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, gallery(t, db, b.ID))

	ok, err := store.Exists(ctx, aURL)
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, gallery(t, db, a.ID), 1)
}

func TestPromoteTempFiles_MissingSourceKeepsURL(t *testing.T) {
	s, db, _ := newService(t)
	owner := testutil.CreateUser(t, db, "admin")
	p := createProperty(t, db, owner.ID)
	ghost := storage.URL(storage.TempFolder, "ghost.jpg")
	require.NoError(t, db.Create(&domain.Image{PropertyID: p.ID, URL: ghost, IsMain: true}).Error)

	out := s.PromoteTempFiles(context.Background(), p.ID, []string{ghost})
	assert.Equal(t, []string{ghost}, out)
	assert.Equal(t, ghost, gallery(t, db, p.ID)[0].URL)
}

func TestPromotePending_IsIdempotent(t *testing.T) {
	s, db, store := newService(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "admin")
	p := createProperty(t, db, owner.ID)
	u := testutil.StageFile(t, store, "late.jpg")
	require.NoError(t, db.Create(&domain.Image{PropertyID: p.ID, URL: u, IsMain: true}).Error)

	n, err := s.PromotePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, storage.URL(storage.PropertyFolder(p.ID), "late.jpg"), gallery(t, db, p.ID)[0].URL)

	n, err = s.PromotePending(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReconcile_SetDifference(t *testing.T) {
	s, db, store := newService(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "admin")
	p := createProperty(t, db, owner.ID)

	urls, err := s.AttachToProperty(ctx, p.ID, []string{
		testutil.StageFile(t, store, "x.jpg"),
		testutil.StageFile(t, store, "y.jpg"),
	}, nil, 0)
	require.NoError(t, err)
	imgs := gallery(t, db, p.ID)
	x, y := imgs[0], imgs[1]

	z := testutil.StageFile(t, store, "z.jpg")
	err = s.Reconcile(ctx, p.ID, []Desired{
		{ID: y.ID, URL: y.URL, Order: 0, IsMain: true},
		{URL: z, Order: 1},
	})
	require.NoError(t, err)

	imgs = gallery(t, db, p.ID)
	require.Len(t, imgs, 2)
	assert.Equal(t, y.ID, imgs[0].ID)
	assert.True(t, imgs[0].IsMain)
	assert.Equal(t, storage.URL(storage.PropertyFolder(p.ID), "z.jpg"), imgs[1].URL)
	assert.False(t, imgs[1].IsMain)

	ok, _ := store.Exists(ctx, x.URL)
	assert.False(t, ok, "removed image file is deleted")
	ok, _ = store.Exists(ctx, urls[1])
	assert.True(t, ok)
}

func TestReconcile_RejectsForeignImage(t *testing.T) {
	s, db, store := newService(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "admin")
	p1 := createProperty(t, db, owner.ID)
	p2 := createProperty(t, db, owner.ID)
	_, err := s.AttachToProperty(ctx, p2.ID, []string{testutil.StageFile(t, store, "o.jpg")}, nil, 0)
	require.NoError(t, err)
	other := gallery(t, db, p2.ID)[0]

	err = s.Reconcile(ctx, p1.ID, []Desired{{ID: other.ID, URL: other.URL}})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Len(t, gallery(t, db, p2.ID), 1)
}

func TestEnsureSingleMain(t *testing.T) {
	_, db, _ := newService(t)
	owner := testutil.CreateUser(t, db, "admin")
	p := createProperty(t, db, owner.ID)
	require.NoError(t, db.Create(&[]domain.Image{
		{PropertyID: p.ID, URL: "/uploads/properties/1/a.jpg", Order: 2, IsMain: true},
		{PropertyID: p.ID, URL: "/uploads/properties/1/b.jpg", Order: 1, IsMain: true},
		{PropertyID: p.ID, URL: "/uploads/properties/1/c.jpg", Order: 0},
	}).Error)

	require.NoError(t, EnsureSingleMain(db, p.ID))
	imgs := gallery(t, db, p.ID)
	assert.False(t, imgs[0].IsMain)
	assert.True(t, imgs[1].IsMain, "lowest-ordered flagged image stays main")
	assert.False(t, imgs[2].IsMain)

	require.NoError(t, db.Model(&domain.Image{}).Where("property_id = ?", p.ID).Update("is_main", false).Error)
	require.NoError(t, EnsureSingleMain(db, p.ID))
	imgs = gallery(t, db, p.ID)
	assert.True(t, imgs[0].IsMain, "first image is promoted when none is main")
}

func TestDeleteOne(t *testing.T) {
	s, db, store := newService(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "admin")
	intruder := testutil.CreateUser(t, db, "manager")
	p := createProperty(t, db, owner.ID)
	_, err := s.AttachToProperty(ctx, p.ID, []string{
		testutil.StageFile(t, store, "m.jpg"),
		testutil.StageFile(t, store, "n.jpg"),
	}, nil, 0)
	require.NoError(t, err)
	main := gallery(t, db, p.ID)[0]
	require.True(t, main.IsMain)

	err = s.DeleteOne(ctx, main.ID, intruder.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = s.DeleteOne(ctx, 9999, owner.ID)
	assert.True(t, domain.IsNotFound(err))

	require.NoError(t, s.DeleteOne(ctx, main.ID, owner.ID))
	imgs := gallery(t, db, p.ID)
	require.Len(t, imgs, 1)
	assert.True(t, imgs[0].IsMain)
	ok, _ := store.Exists(ctx, main.URL)
	assert.False(t, ok)
}
