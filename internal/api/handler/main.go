package handler

import (
	"net/http"

	"partnerhub/internal/interfaces"
	"partnerhub/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do"
)

type Config struct {
	Container *do.Injector
	Mode      string
	Origins   []string
	// RateLimitPerMinute enables per token throttling with the
	// interfaces.Limiter from Container when positive.
	RateLimitPerMinute int
}

func New(cfg *Config) (http.Handler, error) {
	r := echo.New()
	r.Pre(middleware.RemoveTrailingSlash())
	if cfg.Mode == services.SERVER_MODE_DEBUG {
		r.Debug = true
		pprof.Register(r)
	}

	r.JSONSerializer = httpx.SegmentJSONSerializer{}
	r.HTTPErrorHandler = HTTPErrorHandler
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339}\t${method}\t${uri}\t${status}\t${latency_human}\n",
	}))
	r.Use(middleware.Recover())

	r.GET("", func(c echo.Context) error {
		return c.String(http.StatusOK, "🤝")
	})

	origins := cfg.Origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cors := middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		MaxAge:       60 * 60,
	})

	routesAPI := r.Group("/api", cors)
	{
		tokens, err := do.Invoke[*services.ServiceToken](cfg.Container)
		if err != nil {
			return nil, err
		}
		routesAPI.Use(Authn(tokens))

		if cfg.RateLimitPerMinute > 0 {
			limiter, err := do.Invoke[interfaces.Limiter](cfg.Container)
			if err != nil {
				return nil, err
			}
			routesAPI.Use(Throttle(limiter, cfg.RateLimitPerMinute))
		}

		u := groupUser{}
		routesAPI.GET("/user", u.Me)

		p := groupPartner{cfg.Container}
		for _, rt := range p.routes() {
			routesAPI.Add(rt.Method, rt.Path, rt.Handler, RequireAbility(rt.Ability))
		}
	}

	return r, nil
}
