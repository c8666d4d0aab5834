package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	domainerr "inkpipe/internal/domain/errors"
)

type Config struct {
	Site       SiteConfig       `yaml:"site" toml:"site"`
	Content    ContentConfig    `yaml:"content" toml:"content"`
	Categories []Category       `yaml:"categories" toml:"categories"`
	Completion CompletionConfig `yaml:"completion" toml:"completion"`
	AI         AIConfig         `yaml:"ai" toml:"ai"`
	Images     ImagesConfig     `yaml:"images" toml:"images"`
	Build      BuildConfig      `yaml:"build" toml:"build"`
	Serve      ServeConfig      `yaml:"serve" toml:"serve"`
}

type SiteConfig struct {
	Title       string `yaml:"title" toml:"title"`
	Description string `yaml:"description" toml:"description"`
	Author      string `yaml:"author" toml:"author"`
	SiteURL     string `yaml:"site_url" toml:"site_url"`
	Language    string `yaml:"language" toml:"language"`
}

type ContentConfig struct {
	DocsDir   string `yaml:"docs_dir" toml:"docs_dir"`
	BackupDir string `yaml:"backup_dir" toml:"backup_dir"`
	PostsList string `yaml:"posts_list" toml:"posts_list"`
	IndexPath string `yaml:"index_path" toml:"index_path"`
}

// Category maps a top-level docs folder to the category key written into
// frontmatter and used in URLs.
type Category struct {
	Key    string `yaml:"key" toml:"key"`
	Folder string `yaml:"folder" toml:"folder"`
	Path   string `yaml:"path" toml:"path"`
}

type CompletionConfig struct {
	DefaultCategory string        `yaml:"default_category" toml:"default_category"`
	ReadingSpeed    int           `yaml:"reading_speed" toml:"reading_speed"`
	ReadTimeUnit    string        `yaml:"read_time_unit" toml:"read_time_unit"`
	ExcerptLength   int           `yaml:"excerpt_length" toml:"excerpt_length"`
	PromptBodyChars int           `yaml:"prompt_body_chars" toml:"prompt_body_chars"`
	BatchDelay      time.Duration `yaml:"batch_delay" toml:"batch_delay"`
	GuardPrompts    bool          `yaml:"guard_prompts" toml:"guard_prompts"`
}

type AIConfig struct {
	Provider string        `yaml:"provider" toml:"provider"` // gemini | openai | openai-compatible | none
	BaseURL  string        `yaml:"base_url" toml:"base_url"`
	Model    string        `yaml:"model" toml:"model"`
	APIKey   string        `yaml:"api_key" toml:"api_key"`
	Timeout  time.Duration `yaml:"timeout" toml:"timeout"`
}

type ImagesConfig struct {
	UnsplashAccessKey string        `yaml:"unsplash_access_key" toml:"unsplash_access_key"`
	UnsplashEndpoint  string        `yaml:"unsplash_endpoint" toml:"unsplash_endpoint"`
	PlaceholderBase   string        `yaml:"placeholder_base" toml:"placeholder_base"`
	Width             int           `yaml:"width" toml:"width"`
	Height            int           `yaml:"height" toml:"height"`
	Timeout           time.Duration `yaml:"timeout" toml:"timeout"`
}

type BuildConfig struct {
	PublicDir   string       `yaml:"public_dir" toml:"public_dir"`
	FeedPath    string       `yaml:"feed_path" toml:"feed_path"`
	SitemapPath string       `yaml:"sitemap_path" toml:"sitemap_path"`
	ReportPath  string       `yaml:"report_path" toml:"report_path"`
	FeedTTL     int          `yaml:"feed_ttl" toml:"feed_ttl"`
	Minify      bool         `yaml:"minify" toml:"minify"`
	StaticPages []StaticPage `yaml:"static_pages" toml:"static_pages"`
	Now         time.Time    `yaml:"-" toml:"-"`
}

type StaticPage struct {
	Path       string `yaml:"path" toml:"path"`
	ChangeFreq string `yaml:"changefreq" toml:"changefreq"`
	Priority   string `yaml:"priority" toml:"priority"`
}

type ServeConfig struct {
	Addr     string        `yaml:"addr" toml:"addr"`
	Debounce time.Duration `yaml:"debounce" toml:"debounce"`
}

func Default() Config {
	return Config{
		Site: SiteConfig{
			Title:       "小菜权",
			Description: "NO BUG, NO CODE",
			Author:      "小菜权",
			SiteURL:     "https://lanlangmozhu.com",
			Language:    "zh-CN",
		},
		Content: ContentConfig{
			DocsDir:   filepath.Join("public", "docs"),
			BackupDir: filepath.Join("public", "docs-backup"),
			PostsList: filepath.Join("public", "posts-list.json"),
			IndexPath: filepath.Join(".inkpipe", "index.db"),
		},
		Categories: []Category{
			{Key: "blog", Folder: "blog", Path: "/blog"},
			{Key: "practice", Folder: "practice", Path: "/practice"},
			{Key: "ai", Folder: "ai", Path: "/ai"},
		},
		Completion: CompletionConfig{
			DefaultCategory: "blog",
			ReadingSpeed:    300,
			ReadTimeUnit:    "分钟",
			ExcerptLength:   100,
			PromptBodyChars: 2000,
			BatchDelay:      time.Second,
		},
		AI: AIConfig{
			Provider: "gemini",
			Timeout:  60 * time.Second,
		},
		Images: ImagesConfig{
			UnsplashEndpoint: "https://api.unsplash.com",
			PlaceholderBase:  "https://picsum.photos",
			Width:            1200,
			Height:           600,
			Timeout:          15 * time.Second,
		},
		Build: BuildConfig{
			PublicDir:   "public",
			FeedPath:    filepath.Join("public", "rss.xml"),
			SitemapPath: filepath.Join("public", "sitemap.xml"),
			ReportPath:  filepath.Join("public", "seo-report.json"),
			FeedTTL:     60,
			StaticPages: []StaticPage{
				{Path: "", ChangeFreq: "daily", Priority: "1.0"},
				{Path: "/blog/", ChangeFreq: "daily", Priority: "0.9"},
				{Path: "/practice/", ChangeFreq: "weekly", Priority: "0.9"},
				{Path: "/ai/", ChangeFreq: "weekly", Priority: "0.9"},
				{Path: "/about/", ChangeFreq: "monthly", Priority: "0.8"},
				{Path: "/login/", ChangeFreq: "monthly", Priority: "0.5"},
			},
			Now: time.Now(),
		},
		Serve: ServeConfig{
			Addr:     ":8080",
			Debounce: 300 * time.Millisecond,
		},
	}
}

func (c Config) Validate() error {
	var ve domainerr.ValidationError

	if strings.TrimSpace(c.Site.SiteURL) == "" {
		ve.Add("site.site_url", "must not be empty")
	} else if !isValidAbsURL(c.Site.SiteURL) {
		ve.Add("site.site_url", "must be a valid absolute URL")
	}
	if strings.TrimSpace(c.Site.Author) == "" {
		ve.Add("site.author", "must not be empty")
	}

	if strings.TrimSpace(c.Content.DocsDir) == "" {
		ve.Add("content.docs_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Content.BackupDir) == "" {
		ve.Add("content.backup_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Content.PostsList) == "" {
		ve.Add("content.posts_list", "must not be empty")
	}

	if len(c.Categories) == 0 {
		ve.Add("categories", "must declare at least one category")
	}
	seen := make(map[string]struct{}, len(c.Categories))
	for i, cat := range c.Categories {
		if strings.TrimSpace(cat.Key) == "" || strings.TrimSpace(cat.Folder) == "" {
			ve.Addf("categories", "entry %d needs both key and folder", i)
			continue
		}
		if _, dup := seen[cat.Key]; dup {
			ve.Addf("categories", "duplicate key %q", cat.Key)
		}
		seen[cat.Key] = struct{}{}
	}

	if c.Completion.ReadingSpeed <= 0 {
		ve.Add("completion.reading_speed", "must be positive")
	}
	if c.Completion.ExcerptLength <= 0 {
		ve.Add("completion.excerpt_length", "must be positive")
	}
	if c.Completion.BatchDelay < 0 {
		ve.Add("completion.batch_delay", "must not be negative")
	}

	switch strings.ToLower(strings.TrimSpace(c.AI.Provider)) {
	case "", "gemini", "openai", "openai-compatible", "none":
	default:
		ve.Add("ai.provider", "must be one of gemini, openai, openai-compatible, none")
	}

	if c.Images.Width <= 0 || c.Images.Height <= 0 {
		ve.Add("images", "width and height must be positive")
	}

	return ve.Err()
}

// CategoryKeys returns the configured category keys in declaration order.
func (c Config) CategoryKeys() []string {
	out := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		out = append(out, cat.Key)
	}
	return out
}

func isValidAbsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// Load reads a YAML (or TOML, by extension) config on top of Default and
// applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := decodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyEnv()

	// 没指定 Now 的话用当前时间
	if cfg.Build.Now.IsZero() {
		cfg.Build.Now = time.Now()
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func LoadOrDefault(path string) (Config, error) {
	cfg := Default()

	err := decodeFile(path, &cfg)
	if err != nil && !os.IsNotExist(err) {
		return cfg, err
	}
	cfg.applyEnv()
	if cfg.Build.Now.IsZero() {
		cfg.Build.Now = time.Now()
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		// toml 直接解到 cfg 上，未出现的字段保留默认值
		_, err := toml.DecodeFile(path, cfg)
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) applyEnv() {
	if v := firstEnv("SITE_URL", "NEXT_PUBLIC_SITE_URL"); v != "" {
		c.Site.SiteURL = v
	}
	if v := firstEnv("INKPIPE_AI_PROVIDER"); v != "" {
		c.AI.Provider = v
	}
	if v := firstEnv("INKPIPE_AI_BASE_URL"); v != "" {
		c.AI.BaseURL = v
	}
	if v := firstEnv("INKPIPE_AI_MODEL"); v != "" {
		c.AI.Model = v
	}
	if c.AI.APIKey == "" {
		switch strings.ToLower(c.AI.Provider) {
		case "openai", "openai-compatible":
			c.AI.APIKey = firstEnv("OPENAI_API_KEY")
		default:
			c.AI.APIKey = firstEnv("GEMINI_API_KEY", "API_KEY")
		}
	}
	if v := firstEnv("UNSPLASH_ACCESS_KEY"); v != "" {
		c.Images.UnsplashAccessKey = v
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}
