// Package main implements a mock shop for local development. It serves
// product pages in the markup styles real shops use so sources can be
// added and refreshed without touching real websites. Prices drift on
// every tick so the scheduler sees changes and alerts can fire.
package main

import (
	"flag"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

// product is one page on the mock shop.
type product struct {
	Slug     string
	Name     string
	Base     float64
	Style    string // see pageTemplates
	Selector string // what a user would configure for this page
}

var catalog = []product{
	{Slug: "headphones", Name: "Noise Cancelling Headphones", Base: 1299, Style: "class", Selector: ".price"},
	{Slug: "kettle", Name: "Electric Kettle", Base: 189.5, Style: "meta", Selector: `[itemprop="price"]`},
	{Slug: "lamp", Name: "Desk Lamp", Base: 249, Style: "arabic", Selector: "#product-price"},
	{Slug: "novel", Name: "Paperback Novel", Base: 45, Style: "european", Selector: ".amount"},
	{Slug: "shoes", Name: "Running Shoes", Base: 399.99, Style: "sale", Selector: ".old-selector"},
	{Slug: "blender", Name: "Blender", Base: 320, Style: "text", Selector: ".missing"},
	{Slug: "soldout", Name: "Limited Edition Watch", Base: 0, Style: "soldout", Selector: ".price"},
	{Slug: "scripted", Name: "Smart Speaker", Base: 275, Style: "script", Selector: ".price"},
}

var pageTemplates = map[string]string{
	// Plain class with a currency suffix.
	"class": `<div class="product"><h1>{{.Name}}</h1><span class="price">{{.Grouped}} ر.س</span></div>`,
	// Price only in a microdata attribute.
	"meta": `<div itemscope><h1>{{.Name}}</h1><meta itemprop="price" content="{{.Plain}}"><span>Great value</span></div>`,
	// Arabic-Indic digits under an id.
	"arabic": `<div><h1>{{.Name}}</h1><p id="product-price">{{.Arabic}} ريال</p></div>`,
	// European grouping, decimal comma.
	"european": `<div><h1>{{.Name}}</h1><span class="amount">{{.European}} €</span></div>`,
	// User selector is stale, a common selector still matches.
	"sale": `<div><h1>{{.Name}}</h1><span class="sale-price">{{.Plain}}</span></div>`,
	// No markup hooks at all, only the document scan finds it.
	"text": `<div><h1>{{.Name}}</h1><p>Today only: total price {{.Plain}} SAR with free delivery.</p></div>`,
	// No price anywhere.
	"soldout": `<div><h1>{{.Name}}</h1><p>Currently unavailable.</p></div>`,
	// Price only rendered by a script.
	"script": `<div><h1>{{.Name}}</h1><span class="price"></span><script>document.querySelector(".price").textContent = "{{.Plain}}";</script></div>`,
}

const layout = `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>{{.Name}}</title></head><body>%s</body></html>`

type pageData struct {
	Name     string
	Plain    string
	Grouped  string
	Arabic   string
	European string
}

// shop holds the drifting prices.
type shop struct {
	mu     sync.Mutex
	prices map[string]float64
	drift  float64
	tick   int
	tmpl   map[string]*template.Template
	log    *slog.Logger
}

func newShop(drift float64, log *slog.Logger) (*shop, error) {
	s := &shop{
		prices: make(map[string]float64, len(catalog)),
		drift:  drift,
		tmpl:   make(map[string]*template.Template, len(pageTemplates)),
		log:    log,
	}
	for _, p := range catalog {
		s.prices[p.Slug] = p.Base
	}
	for style, body := range pageTemplates {
		t, err := template.New(style).Parse(fmt.Sprintf(layout, body))
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", style, err)
		}
		s.tmpl[style] = t
	}
	return s, nil
}

// step moves every price by up to ±drift percent. The direction follows a
// fixed pattern per product so runs are repeatable.
func (s *shop) step() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tick++
	for i, p := range catalog {
		if p.Base == 0 {
			continue
		}
		angle := float64(s.tick+i*3) / 2
		change := 1 + math.Sin(angle)*s.drift/100
		s.prices[p.Slug] = math.Round(p.Base*change*100) / 100
	}
	return s.tick
}

func (s *shop) price(slug string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prices[slug]
}

func (s *shop) productHandler() http.HandlerFunc {
	bySlug := make(map[string]product, len(catalog))
	for _, p := range catalog {
		bySlug[p.Slug] = p
	}

	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := bySlug[r.PathValue("slug")]
		if !ok {
			http.NotFound(w, r)
			return
		}

		v := s.price(p.Slug)
		data := pageData{
			Name:     p.Name,
			Plain:    fmt.Sprintf("%.2f", v),
			Grouped:  groupThousands(fmt.Sprintf("%.2f", v), ',', '.'),
			Arabic:   toArabicIndic(fmt.Sprintf("%.2f", v)),
			European: groupThousands(fmt.Sprintf("%.2f", v), '.', ','),
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := s.tmpl[p.Style].Execute(w, data); err != nil {
			s.log.Error("rendering page", "slug", p.Slug, "error", err)
		}
	}
}

// blockedHandler answers like an anti-bot wall.
func blockedHandler(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "Access denied", http.StatusForbidden)
}

func (s *shop) indexHandler(w http.ResponseWriter, r *http.Request) {
	base := "http://" + r.Host
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, p := range catalog {
		fmt.Fprintf(w, "%-10s %-8s %-22s %s/p/%s\n", p.Slug, p.Style, p.Selector, base, p.Slug)
	}
	fmt.Fprintf(w, "%-10s %-8s %-22s %s/blocked\n", "blocked", "403", "-", base)
}

func groupThousands(fixed string, group, decimal rune) string {
	intPart, frac, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteRune(group)
		}
		b.WriteRune(r)
	}
	b.WriteRune(decimal)
	b.WriteString(frac)
	return b.String()
}

func toArabicIndic(fixed string) string {
	var b strings.Builder
	for _, r := range fixed {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune('٠' + (r - '0'))
		case r == '.':
			b.WriteRune('٫')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "user_agent", r.UserAgent())
		next.ServeHTTP(w, r)
	})
}

func newMux(s *shop) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.indexHandler)
	mux.HandleFunc("GET /p/{slug}", s.productHandler())
	mux.HandleFunc("GET /blocked", blockedHandler)
	return mux
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	drift := flag.Float64("drift", 5, "maximum price movement per tick, in percent")
	every := flag.Duration("tick", time.Minute, "how often prices move")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s, err := newShop(*drift, logger)
	if err != nil {
		logger.Error("failed to build shop", "error", err)
		os.Exit(1)
	}

	go func() {
		for range time.Tick(*every) {
			tick := s.step()
			logger.Info("prices moved", "tick", tick)
		}
	}()

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock shop", "addr", addr, "products", len(catalog))

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, newMux(s)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
