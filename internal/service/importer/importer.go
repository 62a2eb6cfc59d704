// Package importer runs the bulk order import: paginated search against the
// routing API, chunked normalization, dedup, completion-detail backfill and
// a single upsert into storage.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"optimaflow/internal/routeapi"
	"optimaflow/internal/service/dedupe"
	"optimaflow/internal/service/normalize"
	"optimaflow/internal/service/paginate"
	"optimaflow/internal/service/pipeline"
	"optimaflow/internal/storage"
)

// detailWorkers bounds concurrent completion-detail calls.
const detailWorkers = 4

type RouteClient interface {
	SearchOrders(ctx context.Context, req routeapi.SearchRequest) (routeapi.SearchResponse, error)
	GetCompletionDetails(ctx context.Context, orderNos []string) (routeapi.CompletionResponse, error)
}

type OrderSaver interface {
	UpsertWorkOrders(ctx context.Context, orders []storage.WorkOrder) (int, error)
}

type Result struct {
	OrdersFetched     int   `json:"orders_fetched"`
	UniqueOrders      int   `json:"unique_orders"`
	Saved             int   `json:"saved"`
	Pages             int   `json:"pages"`
	TotalBeforeFilter int   `json:"total_before_filter"`
	DurationMS        int64 `json:"duration_ms"`
}

type Service struct {
	log         *slog.Logger
	client      RouteClient
	saver       OrderSaver
	chunkSize   int
	detailBatch int
}

func New(log *slog.Logger, client RouteClient, saver OrderSaver, chunkSize, detailBatch int) *Service {
	if detailBatch <= 0 {
		detailBatch = 100
	}
	return &Service{
		log:         log,
		client:      client,
		saver:       saver,
		chunkSize:   chunkSize,
		detailBatch: detailBatch,
	}
}

// Run imports every order scheduled in [from, to]. Pages are folded through
// the transform+dedup core in arrival order, so the surviving record per
// order number is deterministic; the concurrent detail backfill happens only
// after that pass and never changes which record survived.
func (s *Service) Run(ctx context.Context, from, to string) (Result, error) {
	const op = "service.importer.Run"

	start := time.Now()
	transformer := pipeline.New(s.log, s.chunkSize)
	transformer.SetTransform(func(raw normalize.RawOrder) (storage.WorkOrder, error) {
		overlay, _ := raw["data"].(map[string]any)
		return normalize.Order(raw, overlay), nil
	})

	var fetched int

	paged, err := paginate.Run(ctx, func(ctx context.Context, afterTag string, collected []storage.WorkOrder) (paginate.Page, error) {
		resp, err := s.client.SearchOrders(ctx, routeapi.SearchRequest{
			DateRange:        &routeapi.DateRange{From: from, To: to},
			IncludeOrderData: true,
			AfterTag:         afterTag,
		})
		if err != nil {
			return paginate.Page{}, err
		}

		fetched += len(resp.Orders)

		deduped, stats, err := transformer.Run(ctx, resp.Orders)
		if err != nil {
			return paginate.Page{}, err
		}

		s.log.Debug("page transformed",
			slog.String("op", op),
			slog.Int("input", stats.Input),
			slog.Int("unique", stats.Unique),
			slog.Int64("elapsed_ms", stats.ElapsedMS),
		)

		return paginate.Page{
			Orders:     dedupe.Merge(s.log, collected, deduped),
			AfterTag:   resp.AfterTag,
			Finished:   resp.Finished,
			TotalCount: resp.TotalCount,
		}, nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.backfillDetails(ctx, paged.Orders); err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	saved, err := s.saver.UpsertWorkOrders(ctx, paged.Orders)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	res := Result{
		OrdersFetched:     fetched,
		UniqueOrders:      len(paged.Orders),
		Saved:             saved,
		Pages:             paged.Pages,
		TotalBeforeFilter: paged.TotalBeforeFilter,
		DurationMS:        time.Since(start).Milliseconds(),
	}

	s.log.Info("import finished",
		slog.String("op", op),
		slog.Int("fetched", res.OrdersFetched),
		slog.Int("unique", res.UniqueOrders),
		slog.Int("pages", res.Pages),
		slog.Int64("duration_ms", res.DurationMS),
	)

	return res, nil
}

// backfillDetails fetches completion payloads in batches and overlays the
// completion-derived fields onto the already-deduplicated orders. Fetches
// run concurrently; the overlay itself is applied sequentially afterwards.
func (s *Service) backfillDetails(ctx context.Context, orders []storage.WorkOrder) error {
	if len(orders) == 0 {
		return nil
	}

	orderNos := make([]string, 0, len(orders))
	for _, o := range orders {
		orderNos = append(orderNos, o.OrderNo)
	}

	var mu sync.Mutex
	details := make(map[string]normalize.RawOrder)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailWorkers)

	for begin := 0; begin < len(orderNos); begin += s.detailBatch {
		end := begin + s.detailBatch
		if end > len(orderNos) {
			end = len(orderNos)
		}
		batch := orderNos[begin:end]

		g.Go(func() error {
			resp, err := s.client.GetCompletionDetails(gctx, batch)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for _, raw := range resp.Orders {
				if no := rawOrderNo(raw); no != "" {
					details[no] = raw
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("fetch completion details: %w", err)
	}

	for i := range orders {
		raw, ok := details[orders[i].OrderNo]
		if !ok {
			continue
		}
		detail := normalize.Order(raw, nil)
		orders[i].CompletionStatus = detail.CompletionStatus
		orders[i].HasImages = orders[i].HasImages || detail.HasImages
		if orders[i].SignatureURL == nil {
			orders[i].SignatureURL = detail.SignatureURL
		}
		if orders[i].TrackingURL == nil {
			orders[i].TrackingURL = detail.TrackingURL
		}
		if detail.Timestamp != "" {
			orders[i].Timestamp = detail.Timestamp
		}
		orders[i].CompletionResponse = detail.CompletionResponse
	}

	return nil
}

func rawOrderNo(raw normalize.RawOrder) string {
	for _, key := range []string{"orderNo", "order_no", "orderNumber", "order_number"} {
		if s, ok := raw[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
