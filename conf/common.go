package conf

import (
	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/log"
)

type Logging struct {
	LogLevel         log.Level `schema:"Log level,requests are logged at debug"`
	RequestLogEnable bool      `schema:"Enable request logging"`
	BodyLogEnable    bool      `schema:"Enable response body logging,request logging must be enabled"`
}

type Redis struct {
	Address  string         `schema:"Address,required if sentinel is not set"`
	Username string         `schema:"Username"`
	Password string         `schema:"Password"`
	Db       int            `schema:"Database number"`
	Sentinel *RedisSentinel `schema:"Sentinel settings,required if address is not set"`
}

type RedisSentinel struct {
	Addresses  []string `valid:"required" schema:"Cluster node addresses"`
	MasterName string   `valid:"required" schema:"Master name"`
	Username   string   `schema:"Sentinel username"`
	Password   string   `schema:"Sentinel password"`
}

func (r *Redis) Validate() error {
	if r == nil {
		return nil
	}
	if r.Sentinel == nil && r.Address == "" {
		return errors.New("invalid redis config. sentinel or address are required")
	}
	return nil
}
