package catalog

import (
	"currency-converter/internal/entity"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

var (
	ErrCatalogLoad     = errors.New("catalog load error")
	ErrUnknownCurrency = errors.New("unknown currency")
)

var validate = validator.New()

// record accepts both the "cc" key of the bundled file and "code".
type record struct {
	CC     string `json:"cc"`
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Catalog is the ordered, read-only list of known currencies.
type Catalog struct {
	records []entity.CurrencyRecord
	index   map[string]int
}

func Load(path string, logger *logrus.Logger) (*Catalog, error) {
	logger.Infof("Loading currency catalog from %s", path)

	f, err := os.Open(path)
	if err != nil {
		logger.Errorf("Failed to open catalog: %v", err)
		return nil, fmt.Errorf("%w: open %s: %w", ErrCatalogLoad, path, err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		logger.Errorf("Failed to parse catalog: %v", err)
		return nil, err
	}

	logger.Infof("Loaded %d currencies", c.Len())
	return c, nil
}

func Parse(r io.Reader) (*Catalog, error) {
	var raw []*record
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrCatalogLoad, err)
	}
	// The file holds exactly one array.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: decode: unexpected data after the currency list", ErrCatalogLoad)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: no currencies", ErrCatalogLoad)
	}

	c := &Catalog{
		records: make([]entity.CurrencyRecord, 0, len(raw)),
		index:   make(map[string]int, len(raw)),
	}

	var errs error
	for i, rec := range raw {
		if rec == nil {
			errs = multierr.Append(errs, fmt.Errorf("record %d: null entry", i))
			continue
		}

		code := rec.CC
		if code == "" {
			code = rec.Code
		}

		cur := entity.CurrencyRecord{
			Code:   strings.ToUpper(strings.TrimSpace(code)),
			Symbol: rec.Symbol,
			Name:   strings.TrimSpace(rec.Name),
		}
		if err := validate.Struct(cur); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		if _, dup := c.index[cur.Code]; dup {
			errs = multierr.Append(errs, fmt.Errorf("record %d: duplicate code %s", i, cur.Code))
			continue
		}

		c.index[cur.Code] = len(c.records)
		c.records = append(c.records, cur)
	}

	if errs != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogLoad, errs)
	}
	return c, nil
}

func (c *Catalog) Len() int {
	return len(c.records)
}

// Records returns a copy, in file order.
func (c *Catalog) Records() []entity.CurrencyRecord {
	out := make([]entity.CurrencyRecord, len(c.records))
	copy(out, c.records)
	return out
}

func (c *Catalog) Contains(code string) bool {
	_, ok := c.index[strings.ToUpper(code)]
	return ok
}

func (c *Catalog) Lookup(code string) (entity.CurrencyRecord, error) {
	i, ok := c.index[strings.ToUpper(code)]
	if !ok {
		return entity.CurrencyRecord{}, fmt.Errorf("%w: %s", ErrUnknownCurrency, code)
	}
	return c.records[i], nil
}

// Options are the selector labels, in catalog order.
func (c *Catalog) Options() []string {
	out := make([]string, len(c.records))
	for i, r := range c.records {
		out[i] = r.Label()
	}
	return out
}

// CodeFromOption maps a selector label, or a bare code, to its currency code.
func (c *Catalog) CodeFromOption(option string) (string, error) {
	option = strings.TrimSpace(option)
	if len(option) < 3 || (len(option) > 3 && option[3] != ' ') {
		return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, option)
	}
	code := strings.ToUpper(option[:3])
	if !c.Contains(code) {
		return "", fmt.Errorf("%w: %s", ErrUnknownCurrency, code)
	}
	return code, nil
}

// Default is the record a freshly populated selector starts on.
func (c *Catalog) Default() entity.CurrencyRecord {
	return c.records[0]
}
