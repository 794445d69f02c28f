package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/vfg2006/traffic-autopilot/infrastructure/repository"
	"github.com/vfg2006/traffic-autopilot/internal/config"
	"github.com/vfg2006/traffic-autopilot/internal/connector"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
	"github.com/vfg2006/traffic-autopilot/internal/observability"
	"github.com/vfg2006/traffic-autopilot/internal/usecases/executing"
	"github.com/vfg2006/traffic-autopilot/internal/usecases/proposing"
	"github.com/vfg2006/traffic-autopilot/internal/usecases/ruling"
	"github.com/vfg2006/traffic-autopilot/pkg/log"
	"golang.org/x/sync/errgroup"
)

var ErrCycleRunning = errors.New("ciclo de controle já em andamento")

const dayLayout = "2006-01-02"

// ControlLoopConfig representa a configuração do ciclo sync → propose → execute
type ControlLoopConfig struct {
	CronSchedule      string
	Enabled           bool
	MaxConcurrent     int
	ConnectorTimeout  time.Duration
	LookbackDays      int
	RuleWindowDays    int
	FreshnessWarnDays int
	FetchIntraday     bool
}

// ConnectorReport resume o processamento de um conector num ciclo
type ConnectorReport struct {
	ConnectorID       string              `json:"connector_id"`
	Platform          string              `json:"platform"`
	Health            domain.HealthStatus `json:"health"`
	Message           string              `json:"message,omitempty"`
	Entities          int                 `json:"entities"`
	Metrics           int                 `json:"metrics"`
	ProposalsCreated  int                 `json:"proposals_created"`
	ProposalsExisting int                 `json:"proposals_existing"`
	Executed          int                 `json:"executed"`
	Error             string              `json:"error,omitempty"`
}

type CycleReport struct {
	CorrelationID string               `json:"correlation_id"`
	Mode          domain.ExecutionMode `json:"mode"`
	StartedAt     time.Time            `json:"started_at"`
	FinishedAt    time.Time            `json:"finished_at"`
	Connectors    []ConnectorReport    `json:"connectors"`
	Skipped       int                  `json:"skipped,omitempty"`
}

func (r *CycleReport) Failed() int {
	failed := 0
	for _, c := range r.Connectors {
		if c.Error != "" {
			failed++
		}
	}
	return failed
}

// ControlLoop executa o ciclo de controle sobre todos os conectores habilitados
type ControlLoop struct {
	scheduler *gocron.Scheduler
	config    ControlLoopConfig
	appConfig *config.Config
	location  *time.Location

	connectors repository.ConnectorRepository
	entities   repository.EntityRepository
	metrics    repository.MetricRepository
	rules      repository.RuleRepository
	builder    executing.ConnectorBuilder
	engine     *ruling.Engine
	proposer   proposing.Proposer
	executor   executing.Executor

	cycleRunning         bool
	cycleMutex           sync.Mutex
	lastCycleStartedAt   time.Time
	lastCycleCompletedAt time.Time
	lastReport           *CycleReport

	now func() time.Time
}

// NewControlLoop cria o ciclo de controle a partir da configuração global
func NewControlLoop(
	repos repository.Repositories,
	builder executing.ConnectorBuilder,
	proposer proposing.Proposer,
	executor executing.Executor,
	appConfig *config.Config,
) *ControlLoop {
	loopConfig := ControlLoopConfig{
		CronSchedule:      appConfig.ControlLoop.CronSchedule,
		Enabled:           appConfig.ControlLoop.Enabled,
		MaxConcurrent:     max(appConfig.ControlLoop.MaxConcurrentConnectors, 1),
		ConnectorTimeout:  appConfig.ControlLoop.ConnectorTimeout(),
		LookbackDays:      max(appConfig.ControlLoop.LookbackDays, 1),
		RuleWindowDays:    max(appConfig.ControlLoop.RuleWindowDays, 1),
		FreshnessWarnDays: appConfig.ControlLoop.FreshnessWarnDays,
		FetchIntraday:     appConfig.ControlLoop.FetchIntraday,
	}
	if loopConfig.ConnectorTimeout <= 0 {
		loopConfig.ConnectorTimeout = time.Minute
	}

	location := appConfig.App.Location()

	log.L.WithFields(log.Fields{
		"cron_schedule":       loopConfig.CronSchedule,
		"enabled":             loopConfig.Enabled,
		"max_concurrent":      loopConfig.MaxConcurrent,
		"connector_timeout":   loopConfig.ConnectorTimeout.String(),
		"lookback_days":       loopConfig.LookbackDays,
		"rule_window_days":    loopConfig.RuleWindowDays,
		"freshness_warn_days": loopConfig.FreshnessWarnDays,
		"fetch_intraday":      loopConfig.FetchIntraday,
		"mode":                appConfig.App.ExecutionMode,
		"timezone":            location.String(),
	}).Info("Configuração do ciclo de controle carregada")

	return &ControlLoop{
		scheduler:  gocron.NewScheduler(location),
		config:     loopConfig,
		appConfig:  appConfig,
		location:   location,
		connectors: repos.Connectors,
		entities:   repos.Entities,
		metrics:    repos.Metrics,
		rules:      repos.Rules,
		builder:    builder,
		engine:     ruling.NewEngine(),
		proposer:   proposer,
		executor:   executor,
		now:        time.Now,
	}
}

// Start agenda o ciclo contínuo
func (s *ControlLoop) Start(ctx context.Context) error {
	if !s.config.Enabled {
		log.L.Info("Ciclo de controle contínuo desabilitado por configuração")
		return nil
	}

	log.L.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador do ciclo de controle")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.runScheduled(ctx)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar ciclo de controle: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		log.L.Info("Parando agendador do ciclo de controle")
		s.scheduler.Stop()
	}()

	return nil
}

func (s *ControlLoop) runScheduled(ctx context.Context) {
	mode, err := s.currentMode()
	if err != nil {
		log.L.WithError(err).Error("Modo de execução inválido, ciclo ignorado")
		return
	}

	if _, err := s.RunCycle(ctx, mode); err != nil && !errors.Is(err, ErrCycleRunning) {
		log.L.WithError(err).Error("Erro no ciclo de controle")
	}
}

func (s *ControlLoop) currentMode() (domain.ExecutionMode, error) {
	return domain.ParseExecutionMode(s.appConfig.App.ExecutionMode)
}

// TriggerManualSync roda um ciclo fora do agendamento, em segundo plano.
// Devolve false se já houver um ciclo em andamento.
func (s *ControlLoop) TriggerManualSync(ctx context.Context) bool {
	s.cycleMutex.Lock()
	running := s.cycleRunning
	s.cycleMutex.Unlock()
	if running {
		log.L.Info("Ciclo de controle já em andamento, ignorando solicitação manual")
		return false
	}

	log.L.Info("Iniciando ciclo de controle manual")
	go s.runScheduled(context.WithoutCancel(ctx))
	return true
}

// RunCycle executa um tick completo. Falhas de um conector ficam registradas
// nele e não interrompem os demais; o cancelamento só é observado entre conectores.
func (s *ControlLoop) RunCycle(ctx context.Context, mode domain.ExecutionMode) (*CycleReport, error) {
	s.cycleMutex.Lock()
	if s.cycleRunning {
		s.cycleMutex.Unlock()
		return nil, ErrCycleRunning
	}
	s.cycleRunning = true
	s.cycleMutex.Unlock()

	defer func() {
		s.cycleMutex.Lock()
		s.cycleRunning = false
		s.cycleMutex.Unlock()
	}()

	ctx, correlationID := log.WithCorrelationID(ctx)
	logger := log.ForContext(ctx).WithField("mode", mode)

	startTime := s.now()
	s.cycleMutex.Lock()
	s.lastCycleStartedAt = startTime
	s.cycleMutex.Unlock()

	report := &CycleReport{
		CorrelationID: correlationID,
		Mode:          mode,
		StartedAt:     startTime.UTC(),
	}

	enabled, err := s.connectors.List(ctx, true)
	if err != nil {
		observability.ObserveCycle(string(mode), "error", time.Since(startTime))
		return nil, fmt.Errorf("erro ao listar conectores: %w", err)
	}

	rules, err := s.rules.List(ctx, true)
	if err != nil {
		observability.ObserveCycle(string(mode), "error", time.Since(startTime))
		return nil, fmt.Errorf("erro ao listar regras: %w", err)
	}

	if recovered, err := s.executor.RecoverStaleClaims(ctx); err != nil {
		logger.WithError(err).Error("Erro ao encerrar reservas de execução abandonadas")
	} else if recovered > 0 {
		logger.WithField("proposal_recovered", recovered).Warn("Reservas de execução abandonadas encerradas como failed")
	}

	logger.WithFields(log.Fields{
		"connector_count": len(enabled),
		"rules":           len(rules),
	}).Info("Iniciando ciclo de controle")

	reports := make([]ConnectorReport, len(enabled))
	launched := make([]bool, len(enabled))

	var group errgroup.Group
	group.SetLimit(s.config.MaxConcurrent)

	for i, cfg := range enabled {
		// o ciclo para de iniciar conectores, mas os que já começaram terminam
		if ctx.Err() != nil {
			logger.Warn("Ciclo cancelado, conectores restantes ficam para o próximo")
			break
		}

		launched[i] = true
		group.Go(func() error {
			reports[i] = s.processConnector(context.WithoutCancel(ctx), cfg, rules, mode)
			return nil
		})
	}
	_ = group.Wait()

	for i, ok := range launched {
		if ok {
			report.Connectors = append(report.Connectors, reports[i])
		} else {
			report.Skipped++
		}
	}

	finishedAt := s.now()
	report.FinishedAt = finishedAt.UTC()

	result := "ok"
	if report.Failed() > 0 || report.Skipped > 0 {
		result = "partial"
	}
	observability.ObserveCycle(string(mode), result, finishedAt.Sub(startTime))

	s.cycleMutex.Lock()
	s.lastCycleCompletedAt = finishedAt
	s.lastReport = report
	s.cycleMutex.Unlock()

	logger.WithFields(log.Fields{
		"duration_ms":       finishedAt.Sub(startTime).Milliseconds(),
		"connector_count":   len(report.Connectors),
		"connector_failed":  report.Failed(),
		"connector_skipped": report.Skipped,
	}).Info("Ciclo de controle concluído")

	return report, nil
}

// processConnector roda health → entidades → métricas → regras → propostas →
// execução para um conector e grava o resultado nele
func (s *ControlLoop) processConnector(ctx context.Context, cfg *domain.ConnectorConfig, rules []domain.Rule, mode domain.ExecutionMode) ConnectorReport {
	report := ConnectorReport{
		ConnectorID: cfg.ID,
		Platform:    cfg.Platform,
	}
	ctx = log.WithConnector(ctx, cfg.ID, cfg.Platform)
	logger := log.ForContext(ctx)

	err := s.safeSync(ctx, cfg, rules, mode, &report)
	if err != nil {
		report.Error = err.Error()
		if report.Health == "" || report.Health.CanSync() {
			report.Health = domain.HealthFromError(err)
		}
		if report.Message == "" {
			report.Message = err.Error()
		}
		logger.WithError(err).Error("Falha ao processar conector")
	}

	result := domain.ConnectorSyncResult{
		ConnectorID:   cfg.ID,
		Health:        report.Health,
		HealthMessage: report.Message,
		Err:           err,
	}
	if err == nil {
		syncedAt := s.now().UTC()
		result.SyncedAt = &syncedAt
	}

	if recordErr := s.connectors.RecordSync(ctx, result); recordErr != nil {
		logger.WithError(recordErr).Error("Erro ao gravar resultado da sincronização do conector")
	}

	observability.ObserveConnectorSync(cfg.Platform, string(report.Health))

	logger.WithFields(log.Fields{
		"connector_health":   report.Health,
		"connector_entities": report.Entities,
		"connector_metrics":  report.Metrics,
		"proposal_created":   report.ProposalsCreated,
		"proposal_executed":  report.Executed,
	}).Info("Conector processado")

	return report
}

// safeSync transforma um panic do conector em erro daquele conector; os
// demais seguem no ciclo
func (s *ControlLoop) safeSync(ctx context.Context, cfg *domain.ConnectorConfig, rules []domain.Rule, mode domain.ExecutionMode, report *ConnectorReport) (err error) {
	defer func() {
		if p := recover(); p != nil {
			log.ForContext(ctx).WithFields(log.Fields{
				"panic_error": p,
				"stack_trace": string(debug.Stack()),
			}).Error("Panic ao processar conector")

			report.Health = domain.HealthErr
			report.Message = ""
			err = fmt.Errorf("panic ao processar conector: %v", p)
		}
	}()

	return s.syncConnector(ctx, cfg, rules, mode, report)
}

func (s *ControlLoop) syncConnector(ctx context.Context, cfg *domain.ConnectorConfig, rules []domain.Rule, mode domain.ExecutionMode, report *ConnectorReport) error {
	conn, err := s.builder.Build(*cfg)
	if err != nil {
		report.Health = domain.HealthErr
		return err
	}

	health := s.healthCheck(ctx, conn)
	report.Health = health.Status
	report.Message = health.Message
	if !health.Status.CanSync() {
		return fmt.Errorf("health check %s: %s", health.Status, health.Message)
	}

	// entidades antes das métricas
	if err := s.syncEntities(ctx, cfg, conn, report); err != nil {
		return err
	}

	today := domain.TruncateDay(s.now(), s.location)
	if err := s.ingestDaily(ctx, cfg, conn, today, report); err != nil {
		return err
	}

	if s.config.FetchIntraday {
		if fetcher, ok := conn.(connector.IntradayFetcher); ok {
			if err := s.ingestIntraday(ctx, cfg, fetcher, today, report); err != nil {
				return err
			}
		}
	}

	s.checkFreshness(ctx, cfg, today, report)

	window, err := s.loadWindow(ctx, cfg, today)
	if err != nil {
		return err
	}

	candidates := s.engine.Evaluate(rules, window)
	if len(candidates) == 0 {
		return nil
	}

	outcome, err := s.proposer.Propose(ctx, proposing.Target{ConnectorID: cfg.ID, Platform: cfg.Platform}, candidates, mode)
	if outcome != nil {
		report.ProposalsCreated = len(outcome.Created)
		report.ProposalsExisting = len(outcome.Existing)
	}
	if err != nil {
		return fmt.Errorf("erro ao gravar propostas: %w", err)
	}

	if mode == domain.ExecutionModeAutoLowRisk {
		s.executeApproved(ctx, outcome.ToExecute, report)
	}

	return nil
}

func (s *ControlLoop) healthCheck(ctx context.Context, conn connector.Connector) domain.HealthReport {
	callCtx, cancel := context.WithTimeout(ctx, s.config.ConnectorTimeout)
	defer cancel()

	report := conn.HealthCheck(callCtx)
	if callCtx.Err() != nil && report.Status.CanSync() {
		return domain.HealthReport{Status: domain.HealthErr, Message: "health check timeout", CheckedAt: s.now().UTC()}
	}
	return report
}

func (s *ControlLoop) syncEntities(ctx context.Context, cfg *domain.ConnectorConfig, conn connector.Connector, report *ConnectorReport) error {
	callCtx, cancel := context.WithTimeout(ctx, s.config.ConnectorTimeout)
	defer cancel()

	seq, err := conn.SyncEntities(callCtx)
	if err != nil {
		return fmt.Errorf("erro ao sincronizar entidades: %w", err)
	}

	entities, err := connector.Collect(seq)
	if err != nil {
		// snapshot parcial não desativa nada
		return fmt.Errorf("erro ao sincronizar entidades: %w", err)
	}

	for i := range entities {
		entities[i].ConnectorID = cfg.ID
		entities[i].Platform = cfg.Platform
	}

	if err := s.entities.ReplaceSnapshot(ctx, cfg.ID, entities, s.now().UTC()); err != nil {
		return fmt.Errorf("erro ao gravar entidades: %w", err)
	}

	report.Entities = len(entities)
	return nil
}

func (s *ControlLoop) ingestDaily(ctx context.Context, cfg *domain.ConnectorConfig, conn connector.Connector, today time.Time, report *ConnectorReport) error {
	callCtx, cancel := context.WithTimeout(ctx, s.config.ConnectorTimeout)
	defer cancel()

	dateRange := connector.DateRange{
		Start: today.AddDate(0, 0, -(s.config.LookbackDays - 1)),
		End:   today,
	}

	log.ForContext(ctx).WithFields(log.Fields{
		"start_date": dateRange.Start.Format(dayLayout),
		"end_date":   dateRange.End.Format(dayLayout),
	}).Debug("Buscando métricas diárias")

	seq, err := conn.FetchMetricsDaily(callCtx, dateRange)
	if err != nil {
		return fmt.Errorf("erro ao buscar métricas: %w", err)
	}

	records, err := connector.Collect(seq)
	if err != nil {
		return fmt.Errorf("erro ao buscar métricas: %w", err)
	}

	for i := range records {
		normalizeRecord(&records[i], cfg, domain.GranularityDaily, s.location)
	}

	if err := s.metrics.UpsertBatch(ctx, records); err != nil {
		return fmt.Errorf("erro ao gravar métricas: %w", err)
	}

	if committer, ok := conn.(connector.MetricsCommitter); ok {
		if err := committer.CommitMetricsDaily(ctx, dateRange); err != nil {
			// o próximo ciclo volta a buscar o mesmo período
			log.ForContext(ctx).WithError(err).Warn("Falha ao confirmar cursor de métricas")
		}
	}

	observability.ObserveMetricRecords(cfg.Platform, string(domain.GranularityDaily), len(records))
	report.Metrics += len(records)
	return nil
}

func (s *ControlLoop) ingestIntraday(ctx context.Context, cfg *domain.ConnectorConfig, fetcher connector.IntradayFetcher, today time.Time, report *ConnectorReport) error {
	callCtx, cancel := context.WithTimeout(ctx, s.config.ConnectorTimeout)
	defer cancel()

	seq, err := fetcher.FetchMetricsIntraday(callCtx, today)
	if err != nil {
		return fmt.Errorf("erro ao buscar métricas por hora: %w", err)
	}

	records, err := connector.Collect(seq)
	if err != nil {
		return fmt.Errorf("erro ao buscar métricas por hora: %w", err)
	}

	for i := range records {
		normalizeRecord(&records[i], cfg, domain.GranularityIntraday, s.location)
	}

	if err := s.metrics.UpsertBatch(ctx, records); err != nil {
		return fmt.Errorf("erro ao gravar métricas por hora: %w", err)
	}

	observability.ObserveMetricRecords(cfg.Platform, string(domain.GranularityIntraday), len(records))
	report.Metrics += len(records)
	return nil
}

// normalizeRecord carimba o conector e alinha a data ao início do balde
func normalizeRecord(rec *domain.MetricRecord, cfg *domain.ConnectorConfig, granularity domain.Granularity, loc *time.Location) {
	rec.ConnectorID = cfg.ID
	rec.Platform = cfg.Platform
	if rec.Granularity == "" {
		rec.Granularity = granularity
	}

	if rec.Granularity == domain.GranularityDaily {
		rec.Date = domain.TruncateDay(rec.Date, loc)
	} else {
		rec.Date = rec.Date.Truncate(time.Hour)
	}
}

// checkFreshness rebaixa para warn um conector cujo último dia de métricas é antigo
func (s *ControlLoop) checkFreshness(ctx context.Context, cfg *domain.ConnectorConfig, today time.Time, report *ConnectorReport) {
	if s.config.FreshnessWarnDays <= 0 {
		return
	}

	latest, err := s.metrics.LatestDate(ctx, cfg.ID, cfg.Platform)
	if err != nil {
		log.ForContext(ctx).WithError(err).Warn("Não foi possível verificar o frescor dos dados")
		return
	}

	limit := today.AddDate(0, 0, -s.config.FreshnessWarnDays).Format(dayLayout)
	switch {
	case latest == nil:
		report.Health = domain.HealthWarn
		report.Message = "no metrics ingested yet"
	case latest.Format(dayLayout) < limit:
		report.Health = domain.HealthWarn
		report.Message = fmt.Sprintf("stale data: last metric date %s", latest.Format(dayLayout))
	}
}

func (s *ControlLoop) loadWindow(ctx context.Context, cfg *domain.ConnectorConfig, today time.Time) (domain.MetricsWindow, error) {
	window := domain.MetricsWindow{
		ConnectorID: cfg.ID,
		Platform:    cfg.Platform,
		End:         today,
	}

	records, err := s.metrics.ListWindow(ctx, domain.MetricFilter{
		ConnectorID: cfg.ID,
		Platform:    cfg.Platform,
		Granularity: domain.GranularityDaily,
		Start:       today.AddDate(0, 0, -(s.config.RuleWindowDays - 1)),
		End:         today,
	})
	if err != nil {
		return window, fmt.Errorf("erro ao ler janela de métricas: %w", err)
	}

	entities, err := s.entities.ListByConnector(ctx, cfg.ID, cfg.Platform, false)
	if err != nil {
		return window, fmt.Errorf("erro ao ler entidades: %w", err)
	}

	window.Records = records
	window.Entities = make(map[domain.EntityKey]domain.Entity, len(entities))
	for _, e := range entities {
		window.Entities[e.Key()] = e
	}

	return window, nil
}

func (s *ControlLoop) executeApproved(ctx context.Context, proposals []*domain.ActionProposal, report *ConnectorReport) {
	for _, p := range proposals {
		logger := log.ForContext(ctx).WithFields(log.Fields{
			"connector_id": p.ConnectorID,
			"proposal_id":  p.ID,
		})

		execution, err := s.executor.Execute(ctx, p.ID, proposing.AutoActor)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidProposalState) {
				logger.Debug("Proposta já reservada por outro executor")
				continue
			}
			logger.WithError(err).Error("Erro ao executar proposta aprovada automaticamente")
			continue
		}

		report.Executed++
		if execution.Result == domain.ExecutionFailure {
			logger.WithField("error", execution.ErrorMessage).Warn("Execução automática falhou")
		}
	}
}

// GetStatus retorna o status atual do agendador
func (s *ControlLoop) GetStatus() map[string]any {
	s.cycleMutex.Lock()
	defer s.cycleMutex.Unlock()

	return map[string]any{
		"enabled":                 s.config.Enabled,
		"cron":                    s.config.CronSchedule,
		"execution_mode":          s.appConfig.App.ExecutionMode,
		"max_concurrent":          s.config.MaxConcurrent,
		"lookback_days":           s.config.LookbackDays,
		"rule_window_days":        s.config.RuleWindowDays,
		"running":                 s.cycleRunning,
		"last_cycle_started_at":   s.lastCycleStartedAt,
		"last_cycle_completed_at": s.lastCycleCompletedAt,
		"last_cycle":              s.lastReport,
	}
}
