package cmd

import (
	"github.com/brogergvhs/noveld/internal/config"
	"github.com/brogergvhs/noveld/internal/providers/biquge"
	"github.com/brogergvhs/noveld/internal/ui"
	"github.com/brogergvhs/noveld/internal/util"
)

func newCatalog(cfg *config.Config, log *ui.Logger) (*biquge.Catalog, error) {
	client, err := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:     cfg.Timeout,
		UserAgent:   util.PickUserAgent(cfg.UserAgent),
		Cookie:      cfg.Cookie,
		CookieFile:  cfg.CookieFile,
		DebugLogger: log,
	})
	if err != nil {
		return nil, err
	}

	c, err := biquge.New(client, cfg.SearchURL, cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	return c.WithDebug(log.Debugf), nil
}
