package receipt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/footprint/internal/emission"
	"github.com/zombor/footprint/internal/pixel"
	"github.com/zombor/footprint/internal/quality"
	"github.com/zombor/footprint/internal/scanning"
)

var (
	// ErrEmptyName is returned when an item has no product name.
	ErrEmptyName = errors.New("item name is required")
	// ErrNoExtractor is returned when scanning is requested without a text extractor.
	ErrNoExtractor = errors.New("no text extractor configured")
	// ErrUnusableImage is returned when a photo fails the receipt quality check.
	ErrUnusableImage = errors.New("image is not usable as a receipt")
	// ErrExtractionFailed is returned when the text extractor cannot read a receipt.
	ErrExtractionFailed = errors.New("extracting items")
	// ErrNoImage is returned when a basket has no stored receipt image.
	ErrNoImage = errors.New("basket has no receipt image")
)

// DefaultMaxDimension is the longest image edge kept before assessment.
const DefaultMaxDimension = 1600

// IDGenerator generates unique IDs for baskets
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// uuidGenerator generates random UUIDs
type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Config holds the image settings of a Service
type Config struct {
	Pipeline     quality.Pipeline
	MaxDimension int
}

// DefaultConfig returns the settings used when none are given
func DefaultConfig() Config {
	return Config{
		Pipeline:     quality.DefaultPipeline(),
		MaxDimension: DefaultMaxDimension,
	}
}

// Service handles estimation, image assessment and basket storage
type Service struct {
	db          DB
	calculator  *emission.Calculator
	extractor   scanning.Extractor
	storage     Storage
	config      Config
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source.
// extractor may be nil, which disables scanning.
func NewService(db DB, calculator *emission.Calculator, extractor scanning.Extractor, storage Storage, config Config) *Service {
	return NewServiceWithDeps(db, calculator, extractor, storage, config, &uuidGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, calculator *emission.Calculator, extractor scanning.Extractor, storage Storage, config Config, idGen IDGenerator, timeSrc TimeSource) *Service {
	if calculator == nil {
		calculator = emission.NewCalculator(nil, nil)
	}
	return &Service{
		db:          db,
		calculator:  calculator,
		extractor:   extractor,
		storage:     storage,
		config:      config,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// EstimateItem estimates a single product
func (s *Service) EstimateItem(req ItemRequest) (emission.ItemResult, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return emission.ItemResult{}, ErrEmptyName
	}

	result := s.calculator.Calculate(name, req.Quantity, req.Merchant, req.Location)
	if result.Category == emission.DefaultCategory {
		slog.Debug("Product fell back to default category", "name", name)
	}
	return result, nil
}

// EstimateBasket estimates a basket and saves it when requested
func (s *Service) EstimateBasket(ctx context.Context, req BasketRequest) (*Basket, error) {
	lines := make([]emission.Line, 0, len(req.Items))
	for _, line := range req.Items {
		line.Name = strings.TrimSpace(line.Name)
		if line.Name == "" {
			return nil, ErrEmptyName
		}
		lines = append(lines, line)
	}

	basket, err := s.newBasket(ctx, SourceManual, req.Merchant, req.Location, req.Date, lines)
	if err != nil {
		return nil, err
	}

	if req.Save {
		if err := s.db.SaveBasket(basket); err != nil {
			return nil, fmt.Errorf("saving basket to database: %w", err)
		}
	}
	return basket, nil
}

// newBasket estimates lines and wraps the result in an unsaved Basket
func (s *Service) newBasket(ctx context.Context, source Source, merchant, location, date string, lines []emission.Line) (*Basket, error) {
	merchant = strings.TrimSpace(merchant)
	location = strings.TrimSpace(location)

	result, err := s.calculator.EstimateBasket(ctx, lines, merchant, location)
	if err != nil {
		return nil, fmt.Errorf("estimating basket: %w", err)
	}

	now := s.timeSource.Now()
	purchased, err := time.Parse("2006-01-02", date)
	if err != nil {
		purchased = now
	}

	return &Basket{
		ID:        s.idGenerator.Generate(),
		Merchant:  merchant,
		Location:  location,
		Date:      purchased,
		Source:    source,
		Lines:     lines,
		Result:    result,
		CreatedAt: now,
	}, nil
}

// decode turns an upload into a pixel buffer no larger than the configured maximum
func (s *Service) decode(data []byte, contentType string) (*pixel.Buffer, error) {
	img, err := scanning.DecodeImage(data, contentType)
	if err != nil {
		return nil, fmt.Errorf("decoding upload: %w", err)
	}
	buf, err := pixel.FromImage(img, s.config.MaxDimension)
	if err != nil {
		return nil, fmt.Errorf("reading pixels: %w", err)
	}
	return buf, nil
}

// AssessImage checks whether an upload is usable as a receipt
func (s *Service) AssessImage(data []byte, contentType string) (quality.Result, error) {
	buf, err := s.decode(data, contentType)
	if err != nil {
		return quality.Result{}, err
	}
	return s.config.Pipeline.Assess(buf), nil
}

// EnhanceImage runs the enhancement pipeline and returns the result as PNG
func (s *Service) EnhanceImage(data []byte, contentType string) ([]byte, error) {
	buf, err := s.decode(data, contentType)
	if err != nil {
		return nil, err
	}
	png, err := s.config.Pipeline.Enhance(buf).PNG()
	if err != nil {
		return nil, fmt.Errorf("encoding enhanced image: %w", err)
	}
	return png, nil
}

// ScanReceipt assesses a photo, extracts its items and saves the estimated
// basket together with the enhanced image. When the photo is unusable the
// quality result is returned together with ErrUnusableImage.
func (s *Service) ScanReceipt(ctx context.Context, data []byte, contentType string) (*Basket, *quality.Result, error) {
	if s.extractor == nil {
		return nil, nil, ErrNoExtractor
	}

	buf, err := s.decode(data, contentType)
	if err != nil {
		return nil, nil, err
	}
	enhanced := s.config.Pipeline.Enhance(buf)
	assessment := quality.Detect(enhanced)
	if !assessment.IsReceiptDetected {
		slog.Info("Rejected receipt photo",
			"confidence", assessment.Confidence,
			"content_type", contentType,
			"file_size", len(data),
		)
		return nil, &assessment, ErrUnusableImage
	}

	extraction, err := s.extractor.ExtractItems(ctx, data, contentType)
	if err != nil {
		slog.Error("Failed to extract receipt items",
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		return nil, &assessment, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	basket, err := s.basketFromExtraction(ctx, SourceScan, extraction)
	if err != nil {
		return nil, &assessment, err
	}
	basket.Quality = &assessment

	png, err := enhanced.PNG()
	if err != nil {
		return nil, &assessment, fmt.Errorf("encoding enhanced image: %w", err)
	}
	saved, err := s.storage.Save(basket.ID+".png", png)
	if err != nil {
		return nil, &assessment, fmt.Errorf("saving image: %w", err)
	}
	basket.Image = saved

	if err := s.db.SaveBasket(basket); err != nil {
		// Clean up the image if database save fails
		if delErr := s.storage.Delete(saved); delErr != nil {
			slog.Warn("Failed to delete image", "image", saved, "error", delErr)
		}
		return nil, &assessment, fmt.Errorf("saving basket to database: %w", err)
	}
	return basket, &assessment, nil
}

// ProcessExtraction estimates and saves a basket from a text extractor reply
// produced outside this service
func (s *Service) ProcessExtraction(ctx context.Context, text string) (*Basket, error) {
	extraction, err := scanning.ParseExtraction(text)
	if err != nil {
		return nil, fmt.Errorf("parsing extraction: %w", err)
	}

	basket, err := s.basketFromExtraction(ctx, SourceExtraction, extraction)
	if err != nil {
		return nil, err
	}
	if err := s.db.SaveBasket(basket); err != nil {
		return nil, fmt.Errorf("saving basket to database: %w", err)
	}
	return basket, nil
}

// basketFromExtraction converts an extraction into an estimated basket
func (s *Service) basketFromExtraction(ctx context.Context, source Source, extraction *scanning.Extraction) (*Basket, error) {
	lines := make([]emission.Line, 0, len(extraction.Items))
	var spend float64
	for _, item := range extraction.Items {
		lines = append(lines, emission.Line{Name: item.Name, Quantity: item.Quantity})
		spend += item.Price
	}

	basket, err := s.newBasket(ctx, source, extraction.Merchant, extraction.Location, extraction.Date, lines)
	if err != nil {
		return nil, err
	}
	basket.Spend = spend
	return basket, nil
}

// GetBasket retrieves a basket by ID
func (s *Service) GetBasket(id string) (*Basket, error) {
	basket, err := s.db.GetBasket(id)
	if err != nil {
		return nil, fmt.Errorf("getting basket: %w", err)
	}
	return basket, nil
}

// ListBaskets returns all saved baskets
func (s *Service) ListBaskets() ([]*Basket, error) {
	baskets, err := s.db.ListBaskets()
	if err != nil {
		return nil, fmt.Errorf("listing baskets: %w", err)
	}
	return baskets, nil
}

// DeleteBasket removes a saved basket and its image
func (s *Service) DeleteBasket(id string) error {
	basket, err := s.db.GetBasket(id)
	if err != nil {
		return fmt.Errorf("getting basket for deletion: %w", err)
	}

	if basket.Image != "" {
		if err := s.storage.Delete(basket.Image); err != nil {
			// Log error but continue with database deletion
			slog.Warn("Failed to delete image", "image", basket.Image, "error", err)
		}
	}

	if err := s.db.DeleteBasket(id); err != nil {
		return fmt.Errorf("deleting basket from database: %w", err)
	}
	return nil
}

// GetBasketImage returns the enhanced PNG kept for a scanned basket
func (s *Service) GetBasketImage(id string) ([]byte, error) {
	basket, err := s.db.GetBasket(id)
	if err != nil {
		return nil, fmt.Errorf("getting basket: %w", err)
	}
	if basket.Image == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoImage, id)
	}

	data, err := s.storage.Get(basket.Image)
	if err != nil {
		return nil, fmt.Errorf("getting basket image: %w", err)
	}
	return data, nil
}

// Categories lists the emission factor table
func (s *Service) Categories() []Category {
	table := s.calculator.Table()
	names := table.Categories()
	categories := make([]Category, 0, len(names))
	for _, name := range names {
		factor, _ := table.Lookup(name)
		categories = append(categories, Category{Name: name, Factor: factor})
	}
	return categories
}
