// Package images stages uploaded property photos and keeps each
// property's gallery consistent with its files.
package images

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/imaijo201-star/real-estate-mg/internal/domain"
	"github.com/imaijo201-star/real-estate-mg/internal/infrastructure/storage"
	"github.com/imaijo201-star/real-estate-mg/internal/pkg/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// MaxFileSize is the largest accepted upload.
const MaxFileSize = 5 << 20

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

type Service struct {
	DB    *gorm.DB
	Store storage.Store
	Now   func() time.Time
}

// Upload is one file of a multipart upload.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Desired is one entry of a gallery edit. ID is zero for images not yet
// stored in the database.
type Desired struct {
	ID     uint
	URL    string
	Order  int
	IsMain bool
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// StageUpload validates every file and writes the batch to temp storage.
// A single invalid file rejects the whole batch.
func (s *Service) StageUpload(ctx context.Context, files []Upload) ([]string, error) {
	if len(files) == 0 {
		return nil, domain.Invalid("files", "업로드할 파일이 없습니다.")
	}

	var problems []string
	for i, f := range files {
		if msg := checkUpload(f); msg != "" {
			problems = append(problems, fmt.Sprintf("파일 %d: %s", i+1, msg))
		}
	}
	if len(problems) > 0 {
		return nil, &domain.ValidationError{Field: "files", Message: strings.Join(problems, ", "), Details: problems}
	}

	urls := make([]string, 0, len(files))
	var total int64
	for _, f := range files {
		// Size may be unknown for streamed parts; enforce the limit while reading.
		body, err := io.ReadAll(io.LimitReader(f.Content, MaxFileSize+1))
		if err != nil {
			s.DeleteFiles(ctx, urls)
			return nil, &domain.StorageError{Op: "read", Err: err}
		}
		if len(body) > MaxFileSize {
			s.DeleteFiles(ctx, urls)
			return nil, domain.Invalid("files", "%s: 파일 크기는 5MB를 초과할 수 없습니다.", f.Name)
		}
		url, err := s.Store.Save(ctx, storage.TempFolder, s.FileName(f.Name), f.ContentType, bytes.NewReader(body))
		if err != nil {
			s.DeleteFiles(ctx, urls)
			return nil, &domain.StorageError{Op: "save", Err: err}
		}
		urls = append(urls, url)
		total += int64(len(body))
	}
	metrics.RecordUpload(total)
	return urls, nil
}

func checkUpload(f Upload) string {
	if !allowedTypes[f.ContentType] {
		return "지원하지 않는 파일 형식입니다. (jpeg, png, webp, gif만 가능)"
	}
	if f.Size > MaxFileSize {
		return "파일 크기는 5MB를 초과할 수 없습니다."
	}
	return ""
}

var unsafeName = regexp.MustCompile(`[^\w\s.-]`)

// FileName builds a collision-resistant storage name that keeps the
// sanitized original name and extension.
func (s *Service) FileName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	base := strings.TrimSuffix(original, filepath.Ext(original))
	base = unsafeName.ReplaceAllString(base, "")
	base = strings.ToLower(strings.Join(strings.Fields(base), "-"))
	if base == "" {
		base = "image"
	}
	ext = unsafeName.ReplaceAllString(ext, "")
	return fmt.Sprintf("%d-%s-%s%s", s.now().UnixMilli(), uuid.NewString()[:8], base, ext)
}

// AttachToProperty inserts image rows for urls in their own transaction and
// then moves temp files into the property folder.
func (s *Service) AttachToProperty(ctx context.Context, propertyID uint, urls []string, orders []int, mainIndex int) ([]string, error) {
	items := make([]Desired, len(urls))
	for i, u := range urls {
		order := i
		if i < len(orders) {
			order = orders[i]
		}
		items[i] = Desired{URL: u, Order: order, IsMain: i == mainIndex}
	}

	tx := s.DB.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()
	if err := s.AttachTx(tx, propertyID, items); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to attach images: %w", err)
	}
	return s.PromoteTempFiles(ctx, propertyID, urls), nil
}

// AttachTx inserts image rows inside tx and repairs the main flag.
func (s *Service) AttachTx(tx *gorm.DB, propertyID uint, items []Desired) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]domain.Image, 0, len(items))
	for _, it := range items {
		if !storage.Attachable(it.URL, propertyID) {
			return domain.Invalid("imageUrls", "잘못된 이미지 경로입니다: %s", it.URL)
		}
		rows = append(rows, domain.Image{PropertyID: propertyID, URL: it.URL, Order: it.Order, IsMain: it.IsMain})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to save images: %w", err)
	}
	return EnsureSingleMain(tx, propertyID)
}

// ReconcileTx makes the stored gallery of propertyID equal to desired:
// rows missing from desired are deleted, new entries are inserted and
// retained rows get their order and main flag rewritten. It returns the
// URLs of removed rows so the caller can delete files after commit.
func (s *Service) ReconcileTx(tx *gorm.DB, propertyID uint, desired []Desired) ([]string, error) {
	var existing []domain.Image
	if err := tx.Where("property_id = ?", propertyID).Find(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to load images: %w", err)
	}
	byID := make(map[uint]domain.Image, len(existing))
	for _, img := range existing {
		byID[img.ID] = img
	}

	keep := make(map[uint]bool)
	var added []Desired
	for _, d := range desired {
		if d.ID == 0 {
			added = append(added, d)
			continue
		}
		if _, ok := byID[d.ID]; !ok {
			return nil, domain.Invalid("imageIds", "이미지 %d는 이 매물에 속하지 않습니다.", d.ID)
		}
		keep[d.ID] = true
	}

	var removed []string
	var removeIDs []uint
	for _, img := range existing {
		if !keep[img.ID] {
			removeIDs = append(removeIDs, img.ID)
			removed = append(removed, img.URL)
		}
	}
	if len(removeIDs) > 0 {
		if err := tx.Where("id IN ?", removeIDs).Delete(&domain.Image{}).Error; err != nil {
			return nil, fmt.Errorf("failed to delete images: %w", err)
		}
	}

	for _, d := range desired {
		if d.ID == 0 {
			continue
		}
		if err := tx.Model(&domain.Image{}).Where("id = ?", d.ID).
			Updates(map[string]interface{}{"sort_order": d.Order, "is_main": d.IsMain}).Error; err != nil {
			return nil, fmt.Errorf("failed to update image %d: %w", d.ID, err)
		}
	}

	if len(added) > 0 {
		if err := s.AttachTx(tx, propertyID, added); err != nil {
			return nil, err
		}
		return removed, nil
	}
	return removed, EnsureSingleMain(tx, propertyID)
}

// Reconcile runs ReconcileTx in its own transaction, then deletes removed
// files and promotes new temp files.
func (s *Service) Reconcile(ctx context.Context, propertyID uint, desired []Desired) error {
	tx := s.DB.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()
	removed, err := s.ReconcileTx(tx, propertyID, desired)
	if err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to update images: %w", err)
	}
	s.DeleteFiles(ctx, removed)
	s.PromoteTempFiles(ctx, propertyID, DesiredURLs(desired))
	return nil
}

// DesiredURLs returns the URLs of items in order.
func DesiredURLs(items []Desired) []string {
	urls := make([]string, len(items))
	for i, it := range items {
		urls[i] = it.URL
	}
	return urls
}

// EnsureSingleMain leaves exactly one main image on a non-empty gallery.
// When several are flagged the lowest-ordered one wins; when none is, the
// lowest-ordered image is promoted.
func EnsureSingleMain(tx *gorm.DB, propertyID uint) error {
	var imgs []domain.Image
	if err := tx.Where("property_id = ?", propertyID).Order("sort_order ASC, id ASC").Find(&imgs).Error; err != nil {
		return fmt.Errorf("failed to load images: %w", err)
	}
	if len(imgs) == 0 {
		return nil
	}
	keep := imgs[0].ID
	mains := 0
	for i := len(imgs) - 1; i >= 0; i-- {
		if imgs[i].IsMain {
			keep = imgs[i].ID
			mains++
		}
	}
	if mains == 1 {
		return nil
	}
	if err := tx.Model(&domain.Image{}).Where("property_id = ? AND id <> ?", propertyID, keep).
		Update("is_main", false).Error; err != nil {
		return fmt.Errorf("failed to reset main image: %w", err)
	}
	if err := tx.Model(&domain.Image{}).Where("id = ?", keep).Update("is_main", true).Error; err != nil {
		return fmt.Errorf("failed to set main image: %w", err)
	}
	return nil
}

// PromoteTempFiles moves temp files among urls into the property folder and
// rewrites their rows. It returns urls with moved entries replaced. Move
// failures are logged and the old URL is kept; a later PromotePending run
// retries them.
func (s *Service) PromoteTempFiles(ctx context.Context, propertyID uint, urls []string) []string {
	out := make([]string, len(urls))
	folder := storage.PropertyFolder(propertyID)
	for i, u := range urls {
		out[i] = u
		if !storage.IsTemp(u) {
			continue
		}
		moved, err := s.Store.Move(ctx, u, folder)
		if err != nil {
			metrics.RecordPromotionFailure()
			log.Warn().Err(err).Uint("property_id", propertyID).Str("url", u).Msg("images: failed to move temp file")
			continue
		}
		if err := s.DB.WithContext(ctx).Model(&domain.Image{}).
			Where("property_id = ? AND url = ?", propertyID, u).
			Update("url", moved).Error; err != nil {
			log.Error().Err(err).Uint("property_id", propertyID).Str("url", moved).Msg("images: failed to rewrite image url")
			continue
		}
		out[i] = moved
	}
	return out
}

// PromotePending retries promotion for every image row still pointing into
// temp storage and returns how many were moved.
func (s *Service) PromotePending(ctx context.Context) (int, error) {
	var pending []domain.Image
	if err := s.DB.WithContext(ctx).Where("url LIKE ?", storage.URLPrefix+"/"+storage.TempFolder+"/%").
		Order("property_id ASC, id ASC").Find(&pending).Error; err != nil {
		return 0, fmt.Errorf("failed to load pending images: %w", err)
	}

	byProperty := make(map[uint][]string)
	for _, img := range pending {
		byProperty[img.PropertyID] = append(byProperty[img.PropertyID], img.URL)
	}
	ids := make([]uint, 0, len(byProperty))
	for id := range byProperty {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	moved := 0
	for _, id := range ids {
		before := byProperty[id]
		after := s.PromoteTempFiles(ctx, id, before)
		for i := range before {
			if before[i] != after[i] {
				moved++
			}
		}
	}
	return moved, nil
}

// DeleteOne removes a single image owned by requester and repairs the main
// flag of the remaining gallery.
func (s *Service) DeleteOne(ctx context.Context, imageID uint, requester uuid.UUID) error {
	if requester == uuid.Nil {
		return domain.ErrUnauthenticated
	}
	var img domain.Image
	if err := s.DB.WithContext(ctx).First(&img, imageID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return &domain.NotFoundError{Resource: "image", ID: imageID}
		}
		return err
	}
	var owner domain.Property
	if err := s.DB.WithContext(ctx).Select("id", "user_id").First(&owner, img.PropertyID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return &domain.NotFoundError{Resource: "property", ID: img.PropertyID}
		}
		return err
	}
	if owner.UserID != requester {
		return domain.ErrForbidden
	}

	s.DeleteFiles(ctx, []string{img.URL})

	tx := s.DB.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()
	if err := tx.Delete(&domain.Image{}, img.ID).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete image: %w", err)
	}
	if err := EnsureSingleMain(tx, img.PropertyID); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// DeleteFiles removes files best-effort. Failures are logged.
func (s *Service) DeleteFiles(ctx context.Context, urls []string) {
	for _, u := range urls {
		if err := s.Store.Delete(ctx, u); err != nil {
			log.Warn().Err(err).Str("url", u).Msg("images: failed to delete file")
		}
	}
}
