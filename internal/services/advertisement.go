package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/mellihq/melli-ads/internal/model"
	"github.com/mellihq/melli-ads/internal/searchindex"
	"github.com/mellihq/melli-ads/internal/store"
)

// syncTimeout bounds the best-effort index sync after a committed write.
const syncTimeout = 5 * time.Second

// reindexBatchLimit caps one bulk load from the store.
const reindexBatchLimit = 10000

// AdvertisementService owns advertisement CRUD. The store is the system of
// record; after each committed write the index copy is updated best-effort.
// A sync failure never fails or rolls back the originating write.
type AdvertisementService struct {
	store store.Store
	idx   searchindex.Index
	log   zerolog.Logger
}

func NewAdvertisementService(s store.Store, idx searchindex.Index, log zerolog.Logger) *AdvertisementService {
	return &AdvertisementService{store: s, idx: idx, log: log}
}

func (s *AdvertisementService) Create(ctx context.Context, ad *model.Advertisement) (*model.Advertisement, error) {
	out, err := s.store.Advertisements().Create(ctx, ad)
	if err != nil {
		return nil, err
	}
	s.syncUpsert(ctx, out)
	return out, nil
}

// GetPublic fetches one advertisement for default views. Inactive or expired
// records read as absent.
func (s *AdvertisementService) GetPublic(ctx context.Context, id string) (*model.Advertisement, error) {
	ad, err := s.store.Advertisements().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ad.IsEligible(time.Now().UTC()) {
		return nil, model.ErrNotFound
	}
	return ad, nil
}

// Get fetches one advertisement regardless of eligibility, for write paths.
func (s *AdvertisementService) Get(ctx context.Context, id string) (*model.Advertisement, error) {
	return s.store.Advertisements().GetByID(ctx, id)
}

func (s *AdvertisementService) Update(ctx context.Context, id string, upd model.AdvertisementUpdate) (*model.Advertisement, error) {
	out, err := s.store.Advertisements().Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.syncUpsert(ctx, out)
	return out, nil
}

func (s *AdvertisementService) Delete(ctx context.Context, id string) error {
	if err := s.store.Advertisements().Delete(ctx, id); err != nil {
		return err
	}
	syncCtx, cancel := syncContext(ctx)
	defer cancel()
	if err := s.idx.Remove(syncCtx, id); err != nil {
		s.log.Warn().Err(err).Str("id", id).Msg("index remove failed; document may linger until next reindex")
	}
	return nil
}

// ReindexAll bulk-loads every advertisement, including inactive ones, into
// the index. Administrative; concurrent writes during the load may be absent
// from the index until the next sync.
func (s *AdvertisementService) ReindexAll(ctx context.Context) (int, error) {
	ads, err := s.store.Advertisements().All(ctx, nil, reindexBatchLimit)
	if err != nil {
		return 0, err
	}
	if err := s.idx.IndexAll(ctx, ads); err != nil {
		return 0, err
	}
	return len(ads), nil
}

func (s *AdvertisementService) syncUpsert(ctx context.Context, ad *model.Advertisement) {
	syncCtx, cancel := syncContext(ctx)
	defer cancel()
	if err := s.idx.Upsert(syncCtx, ad); err != nil {
		s.log.Warn().Err(err).Str("id", ad.ID).Msg("index upsert failed; document stale until next reindex")
	}
}

// syncContext detaches the sync from the request's cancellation so a client
// disconnect after commit cannot abort it, while still bounding the wait.
func syncContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), syncTimeout)
}
