// @title Bridge Relayer API
// @version 1.0
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/CultureBridge/bridge-relayer/api/core"
	"github.com/CultureBridge/bridge-relayer/api/utils"
	bridgeCommon "github.com/CultureBridge/bridge-relayer/common"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
)

const (
	apiRetryInterval = 5 * time.Second
	apiCloseTimeout  = 5 * time.Second
)

type APIImpl struct {
	ctx       context.Context
	apiConfig core.APIConfig
	handler   http.Handler
	server    *http.Server
	logger    hclog.Logger

	serverClosedCh chan struct{}
}

var _ core.API = (*APIImpl)(nil)

func NewAPI(
	ctx context.Context, apiConfig core.APIConfig,
	controllers []core.APIController, logger hclog.Logger,
) *APIImpl {
	router := mux.NewRouter().StrictSlash(true)

	for _, controller := range controllers {
		for _, endpoint := range controller.GetEndpoints() {
			endpointPath := fmt.Sprintf("/%s/%s/%s", apiConfig.PathPrefix, controller.GetPathPrefix(), endpoint.Path)

			endpointHandler := endpoint.Handler
			if endpoint.APIKeyAuth {
				endpointHandler = withAPIKeyAuth(apiConfig, endpointHandler, logger)
			}

			router.HandleFunc(endpointPath, endpointWrapper(endpoint.Path, endpointHandler, logger)).
				Methods(endpoint.Method)

			logger.Debug("Registered api endpoint", "endpoint", endpointPath, "method", endpoint.Method)
		}
	}

	return &APIImpl{
		ctx:       ctx,
		apiConfig: apiConfig,
		handler: handlers.CORS(
			handlers.AllowedOrigins(apiConfig.AllowedOrigins),
			handlers.AllowedHeaders(apiConfig.AllowedHeaders),
			handlers.AllowedMethods(apiConfig.AllowedMethods),
		)(router),
		logger:         logger,
		serverClosedCh: make(chan struct{}),
	}
}

func (api *APIImpl) Handler() http.Handler {
	return api.handler
}

// Start blocks until the server is shut down or ctx is done. Binding errors are retried
// because the port may still be held by a previous run of the process
func (api *APIImpl) Start() {
	defer close(api.serverClosedCh)

	err := bridgeCommon.RetryForever(api.ctx, apiRetryInterval, func(ctx context.Context) error {
		srvCtx, cancelFunc := context.WithCancel(ctx)
		defer cancelFunc()

		api.server = &http.Server{
			Addr:              fmt.Sprintf(":%d", api.apiConfig.Port),
			Handler:           api.handler,
			ReadHeaderTimeout: 3 * time.Second,
			BaseContext:       func(net.Listener) context.Context { return srvCtx },
		}

		api.logger.Info("Starting api", "port", api.apiConfig.Port)

		err := api.server.ListenAndServe()
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		api.logger.Error("Error while trying to start api. Retrying...",
			"port", api.apiConfig.Port, "process", utils.FormatProcessOnPort(api.apiConfig.Port), "err", err)

		_ = api.server.Close()

		return err
	})
	if err != nil && !bridgeCommon.IsContextDoneErr(err) {
		api.logger.Error("api stopped with error", "err", err)
	}

	api.logger.Debug("Stopped api")
}

func (api *APIImpl) Dispose() error {
	if api.server == nil {
		return nil
	}

	var apiErrors []error

	if err := api.server.Shutdown(context.Background()); err != nil {
		apiErrors = append(apiErrors, fmt.Errorf("failed to shutdown api server: %w", err))
	}

	select {
	case <-time.After(apiCloseTimeout):
		api.logger.Debug("api not closed after a timeout")

		if err := api.server.Close(); err != nil {
			apiErrors = append(apiErrors, fmt.Errorf("failed to close api server: %w", err))
		}
	case <-api.serverClosedCh:
	}

	return errors.Join(apiErrors...)
}

func endpointWrapper(path string, handler core.APIEndpointHandler, logger hclog.Logger) core.APIEndpointHandler {
	return func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("endpoint called", "path", path, "url", r.URL)
		handler(w, r)
	}
}

func withAPIKeyAuth(
	apiConfig core.APIConfig, handler core.APIEndpointHandler, logger hclog.Logger,
) core.APIEndpointHandler {
	return func(w http.ResponseWriter, r *http.Request) {
		if !isAuthorized(apiConfig, r.Header.Get(apiConfig.APIKeyHeader)) {
			utils.WriteUnauthorizedResponse(w, r, logger)

			return
		}

		handler(w, r)
	}
}

func isAuthorized(apiConfig core.APIConfig, apiKey string) bool {
	if apiKey == "" {
		return false
	}

	for _, key := range apiConfig.APIKeys {
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1 {
			return true
		}
	}

	return false
}
