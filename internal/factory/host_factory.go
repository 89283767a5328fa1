package factory

import (
	"go.uber.org/zap"

	"github.com/Eklavya-kapoor/armor-api/internal/adapters/httpserver"
	"github.com/Eklavya-kapoor/armor-api/internal/adapters/smtpgw"
	"github.com/Eklavya-kapoor/armor-api/internal/config"
	"github.com/Eklavya-kapoor/armor-api/internal/core"
	"github.com/Eklavya-kapoor/armor-api/internal/ports"
)

// HostFactory creates the transports that feed the scan pipeline
type HostFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.ScanService
}

// NewHostFactory creates a new host factory
func NewHostFactory(cfg *config.Config, logger *zap.Logger, service *core.ScanService) *HostFactory {
	return &HostFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}
}

// CreateHosts creates the configured hosts. The HTTP API is always on;
// the SMTP gateway is opt-in.
func (f *HostFactory) CreateHosts() ([]ports.Host, error) {
	hosts := []ports.Host{
		httpserver.NewServer(f.service, f.logger, f.cfg.GetString("server.listen_address")),
	}

	if f.cfg.GetBool("smtp.enabled") {
		hosts = append(hosts, smtpgw.NewGateway(
			f.service,
			f.logger,
			f.cfg.GetString("smtp.listen_address"),
			f.cfg.GetBool("smtp.block_high"),
			f.cfg.GetString("smtp.headers.score"),
			f.cfg.GetString("smtp.headers.level"),
			f.cfg.GetString("smtp.headers.reason"),
			f.cfg.GetString("smtp.relay.address"),
			f.cfg.GetInt("smtp.relay.port"),
			f.cfg.GetBool("smtp.relay.enabled"),
		))
	}

	return hosts, nil
}
