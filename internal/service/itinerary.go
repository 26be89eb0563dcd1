package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/octobees/itinerary-maker/api/internal/entity"
	"github.com/octobees/itinerary-maker/api/internal/repository"
	"github.com/octobees/itinerary-maker/api/internal/storage"
	"github.com/octobees/itinerary-maker/api/internal/worker"
)

// ErrNoExport is returned when an itinerary has no stored workbook.
var ErrNoExport = errors.New("itinerary export not available")

const (
	defaultPresignExpiry = 15 * time.Minute
	generatedHookPath    = "/itineraries/generated"
)

// ItineraryOptions tunes ItineraryService. Zero values are usable.
type ItineraryOptions struct {
	// Notifier receives a message after each generated itinerary. Optional.
	Notifier      worker.Poster
	Logger        *zap.Logger
	PresignExpiry time.Duration
}

// ItineraryService filters companies into itineraries, saves and exports them.
type ItineraryService struct {
	companies     repository.CompaniesRepository
	numbers       repository.ContactNumbersRepository
	itineraries   repository.ItinerariesRepository
	store         storage.Store
	notifier      worker.Poster
	logger        *zap.Logger
	presignExpiry time.Duration
	now           func() time.Time
}

// NewItineraryService wires the generator.
func NewItineraryService(
	companies repository.CompaniesRepository,
	numbers repository.ContactNumbersRepository,
	itineraries repository.ItinerariesRepository,
	store storage.Store,
	opts ItineraryOptions,
) *ItineraryService {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.PresignExpiry <= 0 {
		opts.PresignExpiry = defaultPresignExpiry
	}
	return &ItineraryService{
		companies:     companies,
		numbers:       numbers,
		itineraries:   itineraries,
		store:         store,
		notifier:      opts.Notifier,
		logger:        opts.Logger,
		presignExpiry: opts.PresignExpiry,
		now:           time.Now,
	}
}

// Generate selects the matching companies, saves them as an itinerary and
// stores its workbook. The same selection over the same companies yields the
// same stops.
func (s *ItineraryService) Generate(ctx context.Context, actor uuid.UUID, name string, selection entity.Selection) (*entity.Itinerary, error) {
	candidates, err := s.companies.ListBySelection(ctx, selection)
	if err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}
	matched := FilterCompanies(candidates, selection)

	ids := make([]uuid.UUID, 0, len(matched))
	for _, c := range matched {
		ids = append(ids, c.ID)
	}
	phones, err := s.numbers.PrimaryForCompanies(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("query contact numbers: %w", err)
	}

	stops := make([]entity.ItineraryStop, 0, len(matched))
	for i, c := range matched {
		stop := entity.ItineraryStop{
			Position:    i + 1,
			CompanyID:   c.ID,
			CompanyName: c.Name,
			Address:     c.Address,
			Website:     c.Website,
		}
		if phone, ok := phones[c.ID]; ok {
			p := phone
			stop.PrimaryPhone = &p
		}
		stops = append(stops, stop)
	}
	itineraryStops.Observe(float64(len(stops)))

	now := s.now()
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Itinerary " + now.UTC().Format("2006-01-02 15:04:05")
	}
	itinerary := entity.NewItinerary(name, cloneSelection(selection), stops, entity.UnresolvedActor(actor), now)

	key, err := s.export(ctx, itinerary)
	if err != nil {
		return nil, err
	}
	itinerary = itinerary.With(entity.ItineraryOverrides{ExportKey: &key})

	if err := s.itineraries.Create(ctx, itinerary); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove unsaved itinerary export",
				zap.String("itinerary_id", itinerary.ID.String()),
				zap.String("key", key),
				zap.Error(delErr),
			)
		}
		return nil, fmt.Errorf("save itinerary: %w", err)
	}

	s.notify(ctx, itinerary)
	return &itinerary, nil
}

func (s *ItineraryService) export(ctx context.Context, itinerary entity.Itinerary) (string, error) {
	buf, err := buildWorkbook(itinerary)
	if err != nil {
		return "", fmt.Errorf("export itinerary: %w", err)
	}
	key := exportKey(itinerary.ID)
	_, err = s.store.Put(ctx, key, buf, storage.PutOptions{
		ContentType: xlsxMediaType,
		Metadata:    map[string]string{"itinerary-id": itinerary.ID.String()},
	})
	if err != nil {
		return "", fmt.Errorf("store itinerary export: %w", err)
	}
	return key, nil
}

func (s *ItineraryService) notify(ctx context.Context, itinerary entity.Itinerary) {
	if s.notifier == nil {
		return
	}
	payload := map[string]any{
		"itinerary_id": itinerary.ID.String(),
		"name":         itinerary.Name,
		"stops":        len(itinerary.Stops),
		"export_key":   deref(itinerary.ExportKey),
		"owner_id":     itinerary.AddedBy.ID().String(),
	}
	if _, err := s.notifier.PostJSON(ctx, generatedHookPath, payload, ""); err != nil {
		s.logger.Warn("itinerary notification failed",
			zap.String("itinerary_id", itinerary.ID.String()),
			zap.Error(err),
		)
	}
}

// Get returns a saved itinerary.
func (s *ItineraryService) Get(ctx context.Context, id uuid.UUID) (*entity.Itinerary, error) {
	return s.itineraries.FindByID(ctx, id)
}

// ExportURL returns a temporary download link to the workbook. Stores that
// cannot sign links return storage.ErrUnsupported and callers stream
// OpenExport instead.
func (s *ItineraryService) ExportURL(ctx context.Context, actor, id uuid.UUID) (string, error) {
	key, err := s.ensureExport(ctx, actor, id)
	if err != nil {
		return "", err
	}
	return s.store.PresignURL(ctx, key, s.presignExpiry)
}

// OpenExport streams the workbook. A workbook missing from the store is rebuilt
// from the saved itinerary.
func (s *ItineraryService) OpenExport(ctx context.Context, actor, id uuid.UUID) (storage.Info, io.ReadCloser, error) {
	key, err := s.ensureExport(ctx, actor, id)
	if err != nil {
		return storage.Info{}, nil, err
	}
	info, body, err := s.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		if key, err = s.rebuildExport(ctx, actor, id); err != nil {
			return storage.Info{}, nil, err
		}
		info, body, err = s.store.Get(ctx, key)
	}
	if err != nil {
		return storage.Info{}, nil, fmt.Errorf("open itinerary export: %w", err)
	}
	return info, body, nil
}

func (s *ItineraryService) ensureExport(ctx context.Context, actor, id uuid.UUID) (string, error) {
	itinerary, err := s.itineraries.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if itinerary.ExportKey != nil && *itinerary.ExportKey != "" {
		return *itinerary.ExportKey, nil
	}
	return s.rebuild(ctx, actor, *itinerary)
}

func (s *ItineraryService) rebuildExport(ctx context.Context, actor, id uuid.UUID) (string, error) {
	itinerary, err := s.itineraries.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return s.rebuild(ctx, actor, *itinerary)
}

func (s *ItineraryService) rebuild(ctx context.Context, actor uuid.UUID, itinerary entity.Itinerary) (string, error) {
	key, err := s.export(ctx, itinerary)
	if err != nil {
		return "", errors.Join(ErrNoExport, err)
	}
	if err := s.itineraries.SetExportKey(ctx, itinerary.ID, key, actor, s.now().UTC()); err != nil {
		return "", err
	}
	return key, nil
}
