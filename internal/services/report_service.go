package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"mesa/internal/models"
	"mesa/internal/repositories"
	"mesa/internal/storage"

	"github.com/google/uuid"
)

const (
	reportPageSize   = 200
	reportURLExpiry  = 15 * time.Minute
	reportDateLayout = "2006-01-02"
)

// ReportService renders per-restaurant daily sales reports as CSV and keeps
// them in object storage.
type ReportService interface {
	Build(ctx context.Context, restaurantID uuid.UUID, day time.Time) ([]byte, error)
	Export(ctx context.Context, restaurantID uuid.UUID, day time.Time) (string, error)
	ExportAll(ctx context.Context, day time.Time) (int, error)
	URL(ctx context.Context, restaurantID uuid.UUID, day time.Time) (string, error)
}

type reportService struct {
	orders      repositories.OrderRepository
	restaurants repositories.RestaurantRepository
	store       storage.ObjectStore
	bucket      string
	log         *slog.Logger
}

func NewReportService(orders repositories.OrderRepository, restaurants repositories.RestaurantRepository, store storage.ObjectStore, bucket string, log *slog.Logger) ReportService {
	return &reportService{
		orders:      orders,
		restaurants: restaurants,
		store:       store,
		bucket:      bucket,
		log:         log,
	}
}

// ReportObject is the object key of a restaurant's report for day.
func ReportObject(restaurantID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("%s/%s.csv", restaurantID, day.UTC().Format(reportDateLayout))
}

func (s *reportService) Build(ctx context.Context, restaurantID uuid.UUID, day time.Time) ([]byte, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	summary, err := s.orders.DailySummary(ctx, restaurantID, start)
	if err != nil {
		return nil, fmt.Errorf("daily summary: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"number", "created_at", "status", "delivery_mode", "customer_name", "lines", "total"})

	for offset := 0; ; offset += reportPageSize {
		page, err := s.orders.List(ctx, restaurantID, &models.OrderFilter{From: &start, To: &end, Limit: reportPageSize, Offset: offset})
		if err != nil {
			return nil, fmt.Errorf("list orders: %w", err)
		}
		for _, o := range page {
			_ = w.Write([]string{
				o.Number,
				o.CreatedAt.UTC().Format(time.RFC3339),
				string(o.Status),
				string(o.DeliveryMode),
				o.CustomerName,
				strconv.Itoa(len(o.Lines)),
				o.Total.StringFixed(2),
			})
		}
		if len(page) < reportPageSize {
			break
		}
	}

	_ = w.Write(nil)
	_ = w.Write([]string{"orders", strconv.Itoa(summary.Orders)})
	_ = w.Write([]string{"revenue", summary.Revenue.StringFixed(2)})
	statuses := make([]string, 0, len(summary.ByStatus))
	for status := range summary.ByStatus {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		_ = w.Write([]string{"status:" + status, strconv.Itoa(summary.ByStatus[models.OrderStatus(status)])})
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *reportService) Export(ctx context.Context, restaurantID uuid.UUID, day time.Time) (string, error) {
	data, err := s.Build(ctx, restaurantID, day)
	if err != nil {
		return "", err
	}
	object := ReportObject(restaurantID, day)
	if err := s.store.Put(ctx, s.bucket, object, data, "text/csv"); err != nil {
		return "", fmt.Errorf("upload report %s: %w", object, err)
	}
	return object, nil
}

// ExportAll exports day's report for every restaurant and returns how many
// succeeded. A failure for one restaurant does not stop the others.
func (s *reportService) ExportAll(ctx context.Context, day time.Time) (int, error) {
	ids, err := s.restaurants.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list restaurants: %w", err)
	}
	exported := 0
	for _, id := range ids {
		if _, err := s.Export(ctx, id, day); err != nil {
			s.log.Error("report export failed", "restaurant_id", id, "date", day.Format(reportDateLayout), "error", err)
			continue
		}
		exported++
	}
	return exported, nil
}

func (s *reportService) URL(ctx context.Context, restaurantID uuid.UUID, day time.Time) (string, error) {
	object := ReportObject(restaurantID, day)
	ok, err := s.store.Exists(ctx, s.bucket, object)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrReportNotFound
	}
	return s.store.PresignedURL(ctx, s.bucket, object, reportURLExpiry)
}
