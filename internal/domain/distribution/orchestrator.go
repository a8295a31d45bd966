package distribution

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storelink/backend/internal/domain/catalog"
	"github.com/storelink/backend/internal/domain/shared"
)

// DestinationConfig carries the per-destination choices for one push:
// attribute overrides, requested inventory shares, target collections and
// location, and whether an errored record should be retried.
type DestinationConfig struct {
	Overrides         map[uuid.UUID]*VariantOverride
	InventoryRequests map[uuid.UUID]int64
	CollectionIDs     []string
	LocationID        string
	ForceSync         bool
}

// BulkSyncReport aggregates the settled outcomes of one orchestration run.
// It is complete by construction: every requested pair appears exactly once,
// whether it succeeded, failed, or was never dispatched because the run was
// canceled.
type BulkSyncReport struct {
	RunID        uuid.UUID     `json:"run_id"`
	Results      []SyncResult  `json:"results"`
	SuccessCount int           `json:"success_count"`
	FailureCount int           `json:"failure_count"`
	Canceled     bool          `json:"canceled"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
}

// ResultForDestination returns the result keyed by destination id
func (r *BulkSyncReport) ResultForDestination(destinationID uuid.UUID) (SyncResult, bool) {
	for _, result := range r.Results {
		if result.DestinationID == destinationID {
			return result, true
		}
	}
	return SyncResult{}, false
}

// ResultForProduct returns the result keyed by product id
func (r *BulkSyncReport) ResultForProduct(productID uuid.UUID) (SyncResult, bool) {
	for _, result := range r.Results {
		if result.ProductID == productID {
			return result, true
		}
	}
	return SyncResult{}, false
}

// Orchestrator fans a bulk request out into SyncJobs, runs them with bounded
// concurrency, and aggregates per-pair outcomes. One pair's failure never
// cancels, blocks, or rolls back another pair's success: destinations are
// independent systems with independent availability, so there is no
// cross-destination transaction.
type Orchestrator struct {
	registry  ClientRegistry
	pool      *InventoryPool
	ledger    *Ledger
	publisher shared.EventPublisher
	logger    *zap.Logger

	workerLimit int
	jobTimeout  time.Duration
}

// OrchestratorOption is a functional option for configuring Orchestrator
type OrchestratorOption func(*Orchestrator)

// WithWorkerLimit bounds the number of simultaneously in-flight jobs.
// Storefront platforms rate-limit aggressively; excess jobs queue.
func WithWorkerLimit(limit int) OrchestratorOption {
	return func(o *Orchestrator) {
		if limit > 0 {
			o.workerLimit = limit
		}
	}
}

// WithJobTimeout bounds each job's remote calls. A hung remote call must not
// starve the worker pool.
func WithJobTimeout(timeout time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if timeout > 0 {
			o.jobTimeout = timeout
		}
	}
}

// WithEventPublisher enables live progress events during a run
func WithEventPublisher(publisher shared.EventPublisher) OrchestratorOption {
	return func(o *Orchestrator) {
		o.publisher = publisher
	}
}

// NewOrchestrator creates a sync orchestrator
func NewOrchestrator(registry ClientRegistry, pool *InventoryPool, ledger *Ledger, logger *zap.Logger, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		registry:    registry,
		pool:        pool,
		ledger:      ledger,
		logger:      logger,
		workerLimit: 4,
		jobTimeout:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// syncPair is one (product, destination) unit of the fan-out, in input order
type syncPair struct {
	index       int
	product     *catalog.Product
	destination *Destination
	config      DestinationConfig
}

// SyncProduct pushes one product to one destination and returns its single
// settled result.
func (o *Orchestrator) SyncProduct(ctx context.Context, product *catalog.Product, destination *Destination, config DestinationConfig) SyncResult {
	report := o.run(ctx, []syncPair{{
		index:       0,
		product:     product,
		destination: destination,
		config:      config,
	}})
	return report.Results[0]
}

// BulkSync pushes one product to many destinations. Configs are keyed by
// destination id; a destination without a config gets the zero config (no
// overrides, no inventory requests).
func (o *Orchestrator) BulkSync(ctx context.Context, product *catalog.Product, destinations []Destination, configs map[uuid.UUID]DestinationConfig) *BulkSyncReport {
	pairs := make([]syncPair, 0, len(destinations))
	for i := range destinations {
		pairs = append(pairs, syncPair{
			index:       i,
			product:     product,
			destination: &destinations[i],
			config:      configs[destinations[i].ID],
		})
	}
	return o.run(ctx, pairs)
}

// BulkSyncProducts pushes many products to one destination. Configs are
// keyed by product id.
func (o *Orchestrator) BulkSyncProducts(ctx context.Context, destination *Destination, products []catalog.Product, configs map[uuid.UUID]DestinationConfig) *BulkSyncReport {
	pairs := make([]syncPair, 0, len(products))
	for i := range products {
		pairs = append(pairs, syncPair{
			index:       i,
			product:     &products[i],
			destination: destination,
			config:      configs[products[i].ID],
		})
	}
	return o.run(ctx, pairs)
}

// run executes the fan-out: prepare each pair (validate, clamp, resolve,
// mark pending), dispatch prepared jobs over a bounded worker pool, settle
// every pair into the report, and emit lifecycle events.
func (o *Orchestrator) run(ctx context.Context, pairs []syncPair) *BulkSyncReport {
	started := time.Now()
	runID := uuid.New()
	report := &BulkSyncReport{
		RunID:     runID,
		Results:   make([]SyncResult, len(pairs)),
		StartedAt: started,
	}

	o.publish(ctx, NewSyncStartedEvent(runID, pairProductIDs(pairs), pairDestinationIDs(pairs), len(pairs)))

	type indexedJob struct {
		index int
		job   *SyncJob
	}
	jobs := make([]indexedJob, 0, len(pairs))

	for _, pair := range pairs {
		job, result, ok := o.prepare(ctx, pair)
		if !ok {
			// Validation failures abort only this pair, before any remote
			// call and before the ledger is touched; the rest of the batch
			// proceeds. No RecordOutcome: a rejected pair never made an
			// attempt, and its record may belong to a still-running job.
			report.Results[pair.index] = result
			o.publish(ctx, NewSyncProgressEvent(runID, result))
			continue
		}
		jobs = append(jobs, indexedJob{index: pair.index, job: job})
	}

	if len(jobs) > 0 {
		workers := o.workerLimit
		if workers > len(jobs) {
			workers = len(jobs)
		}

		queue := make(chan indexedJob)
		var wg sync.WaitGroup

		type indexedResult struct {
			index  int
			result SyncResult
		}
		results := make(chan indexedResult, len(jobs))

		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for item := range queue {
					// A job that reached a worker runs to completion even if
					// the run is canceled mid-flight: a half-done remote
					// mutation is never force-aborted. Only the per-job
					// timeout bounds it.
					result := item.job.Execute(context.WithoutCancel(ctx))
					results <- indexedResult{index: item.index, result: result}
				}
			}()
		}

		for _, item := range jobs {
			// Cancellation observed: no new jobs are dispatched. The
			// undispatched pairs still get a settled result so the report
			// stays complete.
			if ctx.Err() != nil {
				report.Canceled = true
				result := canceledResult(item.job)
				report.Results[item.index] = result
				o.settle(ctx, runID, result)
				continue
			}
			select {
			case <-ctx.Done():
				report.Canceled = true
				result := canceledResult(item.job)
				report.Results[item.index] = result
				o.settle(ctx, runID, result)
			case queue <- item:
			}
		}
		close(queue)

		go func() {
			wg.Wait()
			close(results)
		}()

		for item := range results {
			report.Results[item.index] = item.result
			o.settle(ctx, runID, item.result)
		}
	}

	for _, result := range report.Results {
		if result.Success {
			report.SuccessCount++
		} else {
			report.FailureCount++
		}
	}
	report.Duration = time.Since(started)

	o.publish(ctx, NewSyncCompletedEvent(runID, report))

	o.logger.Info("sync run completed",
		zap.String("run_id", runID.String()),
		zap.Int("jobs", len(pairs)),
		zap.Int("succeeded", report.SuccessCount),
		zap.Int("failed", report.FailureCount),
		zap.Bool("canceled", report.Canceled),
		zap.Duration("duration", report.Duration),
	)

	return report
}

// prepare validates one pair, commits its clamped inventory, resolves the
// payload, and marks the ledger pending. A false return carries the settled
// failure result instead of a job.
func (o *Orchestrator) prepare(ctx context.Context, pair syncPair) (*SyncJob, SyncResult, bool) {
	failed := func(kind ErrorKind, message string) (*SyncJob, SyncResult, bool) {
		return nil, SyncResult{
			ProductID:     pair.product.ID,
			DestinationID: pair.destination.ID,
			ErrorKind:     kind,
			ErrorMessage:  message,
		}, false
	}

	// Reject bad configuration before touching the pool or the remote.
	for variantID, requested := range pair.config.InventoryRequests {
		if requested < 0 {
			return failed(ErrorKindValidation, ErrNegativeQuantity.Error())
		}
		if pair.product.VariantByID(variantID) == nil {
			return failed(ErrorKindValidation, ErrVariantNotFound.Error())
		}
	}

	client, err := o.registry.ClientFor(pair.destination)
	if err != nil {
		return failed(ErrorKindValidation, err.Error())
	}

	existing, err := o.ledger.Lookup(ctx, pair.product.ID, pair.destination.ID)
	if err != nil {
		return failed(ErrorKindValidation, err.Error())
	}
	// A pending younger than the job timeout may still be running in another
	// run; don't stack a second push onto it unless forced. Older pendings
	// are crash leftovers and are superseded.
	if existing.Status == SyncStatusPending && !pair.config.ForceSync &&
		existing.LastAttemptAt != nil && time.Since(*existing.LastAttemptAt) < o.jobTimeout {
		return failed(ErrorKindValidation, "a sync for this product and destination is already in progress")
	}

	committed := make(map[uuid.UUID]int64, len(pair.config.InventoryRequests))
	clamped := false
	for variantID, requested := range pair.config.InventoryRequests {
		qty, err := o.pool.Commit(ctx, variantID, pair.destination.ID, requested)
		if err != nil {
			return failed(ErrorKindValidation, err.Error())
		}
		committed[variantID] = qty
		if qty < requested {
			clamped = true
			o.logger.Warn("inventory request clamped",
				zap.String("variant_id", variantID.String()),
				zap.String("destination_id", pair.destination.ID.String()),
				zap.Int64("requested", requested),
				zap.Int64("committed", qty),
			)
		}
	}

	payload := ResolveProduct(pair.product, pair.config.Overrides, pair.config.CollectionIDs)

	// Marking pending is the final preparation step: once a pair's record is
	// written, the pair always reaches settle, so no rejection can leave a
	// dangling pending or clobber another run's record.
	record, err := o.ledger.RecordAttempt(ctx, pair.product.ID, pair.destination.ID)
	if err != nil {
		return failed(ErrorKindValidation, err.Error())
	}

	return &SyncJob{
		Product:       pair.product.ID,
		Destination:   pair.destination,
		Client:        client,
		Payload:       payload,
		Record:        record,
		Committed:     committed,
		Clamped:       clamped,
		LocationID:    pair.config.LocationID,
		RemoteTimeout: o.jobTimeout,
	}, SyncResult{}, true
}

// settle writes a result to the ledger and emits a progress event. Only
// pairs that reached pending settle; each is owned by exactly one job per
// run, so ledger writes never race.
func (o *Orchestrator) settle(ctx context.Context, runID uuid.UUID, result SyncResult) {
	// Use a detached context: outcomes must reach the ledger even after the
	// run's context is canceled.
	recordCtx := context.WithoutCancel(ctx)
	if _, err := o.ledger.RecordOutcome(recordCtx, result); err != nil {
		o.logger.Error("failed to record sync outcome",
			zap.String("product_id", result.ProductID.String()),
			zap.String("destination_id", result.DestinationID.String()),
			zap.Error(err),
		)
	}
	o.publish(recordCtx, NewSyncProgressEvent(runID, result))
}

func (o *Orchestrator) publish(ctx context.Context, event shared.DomainEvent) {
	if o.publisher == nil {
		return
	}
	if err := o.publisher.Publish(ctx, event); err != nil {
		o.logger.Error("failed to publish sync event",
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	}
}

func canceledResult(job *SyncJob) SyncResult {
	return SyncResult{
		ProductID:     job.Product,
		DestinationID: job.Destination.ID,
		ErrorKind:     ErrorKindCanceled,
		ErrorMessage:  "sync canceled before dispatch",
		Committed:     job.Committed,
		Clamped:       job.Clamped,
	}
}

func pairProductIDs(pairs []syncPair) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(pairs))
	ids := make([]uuid.UUID, 0, len(pairs))
	for _, pair := range pairs {
		if _, ok := seen[pair.product.ID]; ok {
			continue
		}
		seen[pair.product.ID] = struct{}{}
		ids = append(ids, pair.product.ID)
	}
	return ids
}

func pairDestinationIDs(pairs []syncPair) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(pairs))
	ids := make([]uuid.UUID, 0, len(pairs))
	for _, pair := range pairs {
		if _, ok := seen[pair.destination.ID]; ok {
			continue
		}
		seen[pair.destination.ID] = struct{}{}
		ids = append(ids, pair.destination.ID)
	}
	return ids
}
