package provisioning

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/supby/pressure2mqtt/internal/logger"
	"github.com/supby/pressure2mqtt/internal/mqtt"
	"github.com/supby/pressure2mqtt/internal/settings"
	"github.com/supby/pressure2mqtt/internal/wifi"
	"gopkg.in/yaml.v2"
)

var (
	ErrNoRequest     = errors.New("provisioning: no request")
	ErrInvalidInput  = errors.New("provisioning: invalid request")
	ErrNetworkFailed = errors.New("provisioning: network join failed")
)

// Request is the provisioning input, read from a YAML file.
type Request struct {
	SSID     string `yaml:"ssid"`
	Password string `yaml:"password"`
	Address  string `yaml:"address"`
	Username string `yaml:"username"`
	Topic    string `yaml:"topic"`
}

func (r Request) Settings() settings.Settings {
	return settings.Settings{
		SSID:     r.SSID,
		Password: r.Password,
		Address:  r.Address,
		Username: r.Username,
		Topic:    r.Topic,
	}
}

func LoadRequest(filename string) (Request, error) {
	buf, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return Request{}, fmt.Errorf("%w: %v does not exist", ErrNoRequest, filename)
	}
	if err != nil {
		return Request{}, err
	}

	var req Request
	if err := yaml.UnmarshalStrict(buf, &req); err != nil {
		return Request{}, fmt.Errorf("%w: %v: %v", ErrInvalidInput, filename, err)
	}

	return req, nil
}

type Connector interface {
	Probe(ctx context.Context, s settings.Settings) (mqtt.ConnectResult, error)
}

type Saver interface {
	Save(ctx context.Context, s settings.Settings) error
}

type Provisioner struct {
	Network   wifi.Network
	Connector Connector
	Store     Saver
	Logger    logger.Logger
}

// Run applies the request. Settings are committed, validity marker
// included, only after every step succeeded.
func (p *Provisioner) Run(ctx context.Context, req Request) (settings.Settings, error) {
	s := req.Settings()
	if err := s.Validate(); err != nil {
		return settings.Settings{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	p.Logger.Info("Provisioning %v", s)

	if err := p.Network.Join(ctx, s.SSID, s.Password); err != nil {
		return settings.Settings{}, fmt.Errorf("%w: %v", ErrNetworkFailed, err)
	}

	result, err := p.Connector.Probe(ctx, s)
	if err != nil {
		return settings.Settings{}, err
	}
	if !result.IsSuccess() {
		return settings.Settings{}, result.Err()
	}

	if err := p.Store.Save(ctx, s); err != nil {
		return settings.Settings{}, fmt.Errorf("saving settings: %w", err)
	}

	p.Logger.Info("Provisioning complete")

	return s, nil
}
