package handler

import (
	"net/http"

	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vfg2006/traffic-autopilot/infrastructure/repository"
	"github.com/vfg2006/traffic-autopilot/internal/api/handler/router"
	"github.com/vfg2006/traffic-autopilot/internal/usecases/authenticating"
	"github.com/vfg2006/traffic-autopilot/internal/usecases/connecting"
	"github.com/vfg2006/traffic-autopilot/internal/usecases/executing"
	"github.com/vfg2006/traffic-autopilot/internal/usecases/proposing"
	"github.com/vfg2006/traffic-autopilot/pkg/middleware"
)

var operatorOnly = []alice.Constructor{middleware.OperatorOnly()}

func Healthcheck(store Pinger) []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(store),
		},
	}
}

func Metrics() []router.Route {
	return []router.Route{
		{
			Path:    "/metrics",
			Method:  http.MethodGet,
			Handler: promhttp.Handler(),
		},
	}
}

func Authentication(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/login",
			Method:  http.MethodPost,
			Handler: Login(service),
		},
	}
}

func Connectors(service connecting.Connecter) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/connectors",
			Method:      http.MethodGet,
			Handler:     ListConnectors(service),
			Middlewares: operatorOnly,
		},
		{
			Path:        "/v1/connectors",
			Method:      http.MethodPost,
			Handler:     ConfigureConnector(service),
			Middlewares: operatorOnly,
		},
		{
			Path:        "/v1/connectors/:id/enable",
			Method:      http.MethodPost,
			Handler:     SetConnectorEnabled(service, true),
			Middlewares: operatorOnly,
		},
		{
			Path:        "/v1/connectors/:id/disable",
			Method:      http.MethodPost,
			Handler:     SetConnectorEnabled(service, false),
			Middlewares: operatorOnly,
		},
		{
			Path:        "/v1/connectors/:id/health",
			Method:      http.MethodGet,
			Handler:     ConnectorHealth(service),
			Middlewares: operatorOnly,
		},
		{
			Path:        "/v1/platforms",
			Method:      http.MethodGet,
			Handler:     ListPlatforms(service),
			Middlewares: operatorOnly,
		},
	}
}

func Proposals(proposer proposing.Proposer, executor executing.Executor) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/proposals",
			Method:      http.MethodGet,
			Handler:     ListProposals(proposer),
			Middlewares: operatorOnly,
		},
		{
			Path:        "/v1/proposals/:id",
			Method:      http.MethodGet,
			Handler:     GetProposal(proposer),
			Middlewares: operatorOnly,
		},
		{
			Path:        "/v1/proposals/:id/decision",
			Method:      http.MethodPost,
			Handler:     DecideProposal(proposer),
			Middlewares: operatorOnly,
		},
		{
			Path:        "/v1/proposals/:id/execute",
			Method:      http.MethodPost,
			Handler:     ExecuteProposal(executor),
			Middlewares: operatorOnly,
		},
	}
}

func Executions(executor executing.Executor) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/executions",
			Method:      http.MethodGet,
			Handler:     ListExecutions(executor),
			Middlewares: operatorOnly,
		},
	}
}

func Rules(rules repository.RuleRepository) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/rules",
			Method:      http.MethodGet,
			Handler:     ListRules(rules),
			Middlewares: operatorOnly,
		},
		{
			Path:        "/v1/rules/:id/enable",
			Method:      http.MethodPost,
			Handler:     SetRuleEnabled(rules, true),
			Middlewares: operatorOnly,
		},
		{
			Path:        "/v1/rules/:id/disable",
			Method:      http.MethodPost,
			Handler:     SetRuleEnabled(rules, false),
			Middlewares: operatorOnly,
		},
	}
}

func CronJobs(loop CycleRunner, defaultMode string) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/cron/run",
			Method:      http.MethodPost,
			Handler:     RunCron(loop, defaultMode),
			Middlewares: operatorOnly,
		},
		{
			Path:        "/v1/cron/status",
			Method:      http.MethodGet,
			Handler:     GetCronStatus(loop),
			Middlewares: operatorOnly,
		},
	}
}
