package server

import (
	"encoding/json"
	nethttp "net/http"
	"strconv"
	"time"

	"offer-redirect/internal/biz"
	"offer-redirect/internal/conf"
	"offer-redirect/internal/service"
	"offer-redirect/pkg/problemdetails"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
)

// NewHTTPServer wires the redirect and stats endpoints onto a kratos HTTP
// server.
func NewHTTPServer(c *conf.Server, redirect *service.RedirectService, stats *service.StatsService, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
			logging.Server(logger),
		),
		http.ErrorEncoder(encodeError),
	}
	if c.HTTP.Network != "" {
		opts = append(opts, http.Network(c.HTTP.Network))
	}
	if c.HTTP.Addr != "" {
		opts = append(opts, http.Address(c.HTTP.Addr))
	}
	if c.HTTP.Timeout != "" {
		if d, err := time.ParseDuration(c.HTTP.Timeout); err == nil {
			opts = append(opts, http.Timeout(d))
		}
	}
	srv := http.NewServer(opts...)

	r := srv.Route("/")

	r.GET("/health", func(ctx http.Context) error {
		return ctx.Result(nethttp.StatusOK, map[string]string{"status": "ok"})
	})

	r.GET("/r/{slug}", func(ctx http.Context) error {
		dest, err := redirect.ResolveSlug(
			ctx.Request().Context(),
			ctx.Vars().Get("slug"),
			ctx.Query().Get("c"),
			ctx.Query().Get("u"),
		)
		if err != nil {
			return err
		}
		nethttp.Redirect(ctx.Response(), ctx.Request(), dest, nethttp.StatusFound)
		return nil
	})

	r.GET("/s/{id}", func(ctx http.Context) error {
		path, err := redirect.ResolveShort(ctx.Request().Context(), ctx.Vars().Get("id"))
		if err != nil {
			return err
		}
		nethttp.Redirect(ctx.Response(), ctx.Request(), path, nethttp.StatusFound)
		return nil
	})

	r.POST("/s/new", func(ctx http.Context) error {
		var req service.CreateShortLinkRequest
		if err := ctx.Bind(&req); err != nil {
			return biz.ErrInvalidArgument("request body must be valid JSON")
		}
		reply, err := redirect.CreateShortLink(ctx.Request().Context(), &req)
		if err != nil {
			return err
		}
		return ctx.Result(nethttp.StatusOK, reply)
	})

	r.GET("/stats/range", func(ctx http.Context) error {
		reply, err := stats.Range(ctx.Request().Context(), &service.StatsRangeRequest{
			FromDate: ctx.Query().Get("from_date"),
			ToDate:   ctx.Query().Get("to_date"),
			Country:  ctx.Query().Get("country"),
		})
		if err != nil {
			return err
		}
		return ctx.Result(nethttp.StatusOK, reply)
	})

	r.GET("/stats/plot", func(ctx http.Context) error {
		req := &service.StatsPlotRequest{
			StatsRangeRequest: service.StatsRangeRequest{
				FromDate: ctx.Query().Get("from_date"),
				ToDate:   ctx.Query().Get("to_date"),
				Country:  ctx.Query().Get("country"),
			},
		}
		if raw := ctx.Query().Get("top"); raw != "" {
			top, err := strconv.Atoi(raw)
			if err != nil || top < 1 {
				return biz.ErrInvalidArgument("top must be a positive integer")
			}
			req.Top = top
		}
		data, err := stats.Plot(ctx.Request().Context(), req)
		if err != nil {
			return err
		}
		return ctx.Blob(nethttp.StatusOK, "image/png", data)
	})

	return srv
}

// encodeError writes every handler error as an RFC 7807 problem document.
func encodeError(w nethttp.ResponseWriter, _ *nethttp.Request, err error) {
	pd := problemdetails.FromError(err)
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(pd.Status)
	_ = json.NewEncoder(w).Encode(pd)
}
