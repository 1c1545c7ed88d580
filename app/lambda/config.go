package lambda

import "github.com/lambda-feedback/cgibin/util/conf"

// ProxySource is the kind of AWS event the function receives.
type ProxySource string

const (
	ProxySourceApiGatewayV1 ProxySource = "API_GW_V1"
	ProxySourceApiGatewayV2 ProxySource = "API_GW_V2"
	ProxySourceAlb          ProxySource = "ALB"
)

func (p ProxySource) String() string {
	return string(p)
}

type Config struct {
	// ProxySource is the source of the AWS Lambda event.
	ProxySource ProxySource `conf:"lambda_proxy_source"`
}

var DefaultConfig = conf.DefaultConfig{
	"lambda_proxy_source": string(ProxySourceApiGatewayV2),
}
