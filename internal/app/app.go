package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"shelf-go/internal/config"
	"shelf-go/internal/encryption"
	"shelf-go/internal/i18n"
	"shelf-go/internal/kv"
	"shelf-go/internal/netscape"
	"shelf-go/internal/settings"
	"shelf-go/internal/shelf"
)

// Export formats.
const (
	FormatHTML = "html"
	FormatJSON = "json"
)

var (
	// ErrUnknownFormat is returned for an export format other than html or json.
	ErrUnknownFormat = errors.New("unknown export format")

	// ErrBackupNotConfigured is returned by Backup and Restore before
	// `shelf config init` has generated the key pair.
	ErrBackupNotConfigured = errors.New("backup keys are not configured")
)

// ShelfApp is the application layer between the CLI or HTTP server and the
// repository. It constructs every dependency from config and owns their
// lifecycle; callers must call Close when done.
type ShelfApp struct {
	cfg        *config.Config
	store      shelf.Store
	repo       *shelf.Repository
	settings   *settings.Settings
	translator *i18n.Translator
	encryptor  shelf.Encryptor
	logger     shelf.Logger
	zl         *zap.Logger
	clock      shelf.Clock
	idgen      shelf.IDGenerator
	op         *Operation
	closeLog   func() error
}

// NewShelfApp creates a fully wired ShelfApp from the given config.
// operation names the command being run (e.g. "import", "serve") and tags
// every log line written while it runs.
func NewShelfApp(ctx context.Context, cfg *config.Config, operation string) (*ShelfApp, error) {
	clock := shelf.RealClock{}
	op := NewOperation(operation, clock)

	zl, closeLog, err := newLogger(cfg.LogDir, cfg.LogLevel, op.ID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	store, err := kv.NewStoreFromConfig(ctx, cfg.Store)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("creating store: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		store.Close()
		closeLog()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	a, err := newShelfApp(cfg, store, enc, zl, clock, shelf.UUIDGenerator{}, op)
	if err != nil {
		store.Close()
		closeLog()
		return nil, err
	}
	a.closeLog = closeLog
	return a, nil
}

// newShelfApp wires the components on top of an already opened store.
func newShelfApp(cfg *config.Config, store shelf.Store, enc shelf.Encryptor, zl *zap.Logger, clock shelf.Clock, idgen shelf.IDGenerator, op *Operation) (*ShelfApp, error) {
	tr, err := i18n.New()
	if err != nil {
		return nil, fmt.Errorf("loading translations: %w", err)
	}

	logger := newZapAdapter(zl)
	st := settings.New(store, logger)
	lang := st.LanguageOr(cfg.Language)

	repo, err := shelf.Open(store, logger, clock, idgen,
		shelf.WithDefaultCategoryName(tr.T(lang, "category.default")))
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}

	logger.Debug("operation started", "operation", op.Name, "store", cfg.Store.Type)

	return &ShelfApp{
		cfg:        cfg,
		store:      store,
		repo:       repo,
		settings:   st,
		translator: tr,
		encryptor:  enc,
		logger:     logger,
		zl:         zl,
		clock:      clock,
		idgen:      idgen,
		op:         op,
	}, nil
}

func (a *ShelfApp) Config() *config.Config { return a.cfg }
func (a *ShelfApp) Repository() *shelf.Repository { return a.repo }
func (a *ShelfApp) Settings() *settings.Settings { return a.settings }
func (a *ShelfApp) Translator() *i18n.Translator { return a.translator }
func (a *ShelfApp) Logger() shelf.Logger { return a.logger }
func (a *ShelfApp) ZapLogger() *zap.Logger { return a.zl }
func (a *ShelfApp) Operation() *Operation { return a.op }
func (a *ShelfApp) Encryptor() shelf.Encryptor { return a.encryptor }

// Language is the current interface language.
func (a *ShelfApp) Language() string {
	return a.settings.LanguageOr(a.cfg.Language)
}

// T translates key into the current interface language.
func (a *ShelfApp) T(key string) string {
	return a.translator.T(a.Language(), key)
}

// ImportResult summarizes an import.
type ImportResult struct {
	Format     string
	Merged     bool
	Bookmarks  int
	Categories int
}

// ImportFile reads path and imports it. See Import.
func (a *ShelfApp) ImportFile(path string, merge bool) (ImportResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("reading import file: %w", err)
	}
	return a.Import(content, merge)
}

// Import detects the payload format and loads it into the repository.
// Browser bookmark files are parsed as HTML; anything else must be a JSON
// export. With merge, entries are upserted by id; otherwise the collections
// are replaced.
func (a *ShelfApp) Import(content []byte, merge bool) (ImportResult, error) {
	data, format, err := a.decode(content)
	if err != nil {
		return ImportResult{}, err
	}

	if merge {
		err = a.repo.MergeData(data)
	} else {
		err = a.repo.ImportData(data)
	}
	if err != nil {
		return ImportResult{}, fmt.Errorf("importing %s: %w", format, err)
	}

	res := ImportResult{
		Format:     format,
		Merged:     merge,
		Bookmarks:  len(data.Bookmarks),
		Categories: len(data.Categories),
	}
	a.logger.Info("import finished", "format", format, "merge", merge,
		"bookmarks", res.Bookmarks, "categories", res.Categories)
	return res, nil
}

func (a *ShelfApp) decode(content []byte) (shelf.Data, string, error) {
	if netscape.IsBookmarkFile(string(content)) {
		lang := a.Language()
		data, err := netscape.Parse(bytes.NewReader(content), a.clock, a.idgen,
			netscape.WithRootName(a.translator.T(lang, "import.root")),
			netscape.WithUntitledBookmark(a.translator.T(lang, "bookmark.untitled")),
			netscape.WithUntitledFolder(a.translator.T(lang, "folder.untitled")),
		)
		if err != nil {
			return shelf.Data{}, FormatHTML, fmt.Errorf("parsing bookmark file: %w", err)
		}
		return data, FormatHTML, nil
	}

	data, err := shelf.DecodeData(bytes.NewReader(content))
	if err != nil {
		return shelf.Data{}, FormatJSON, err
	}
	return data, FormatJSON, nil
}

// Export writes the current collections to w in format.
func (a *ShelfApp) Export(w io.Writer, format string) error {
	data := a.repo.ExportData()
	switch format {
	case FormatHTML:
		return netscape.Serialize(w, data)
	case FormatJSON, "":
		return shelf.EncodeData(w, data)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ExportFile writes an export to path, replacing it atomically.
func (a *ShelfApp) ExportFile(path, format string) error {
	if err := writeFileAtomic(path, 0644, func(w io.Writer) error {
		return a.Export(w, format)
	}); err != nil {
		return err
	}
	a.logger.Info("export written", "path", path, "format", format)
	return nil
}

// Backup writes a JSON export of the collections to path, encrypted with
// the configured public key.
func (a *ShelfApp) Backup(path string) error {
	if !a.encryptor.IsConfigured() {
		return ErrBackupNotConfigured
	}

	var plain bytes.Buffer
	if err := shelf.EncodeData(&plain, a.repo.ExportData()); err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}

	if err := writeFileAtomic(path, 0600, func(w io.Writer) error {
		return a.encryptor.Encrypt(&plain, w)
	}); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}

	nb, nc := a.repo.Counts()
	a.logger.Info("backup written", "path", path, "bookmarks", nb, "categories", nc)
	return nil
}

// Restore decrypts the backup at path with passphrase and replaces the
// collections with its contents.
func (a *ShelfApp) Restore(path, passphrase string) error {
	if !a.encryptor.IsConfigured() {
		return ErrBackupNotConfigured
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening backup: %w", err)
	}
	defer f.Close()

	dc, err := a.encryptor.Unlock(passphrase)
	if err != nil {
		return fmt.Errorf("unlocking private key: %w", err)
	}

	var plain bytes.Buffer
	if err := dc.Decrypt(f, &plain); err != nil {
		return fmt.Errorf("decrypting backup: %w", err)
	}

	data, err := shelf.DecodeData(&plain)
	if err != nil {
		return fmt.Errorf("reading backup: %w", err)
	}
	if err := a.repo.ImportData(data); err != nil {
		return fmt.Errorf("restoring backup: %w", err)
	}

	a.logger.Info("backup restored", "path", path,
		"bookmarks", len(data.Bookmarks), "categories", len(data.Categories))
	return nil
}

// Fail marks the operation as failed and logs err.
func (a *ShelfApp) Fail(err error) {
	a.op.Status = "error"
	a.logger.Error("operation failed", "operation", a.op.Name, "error", err)
}

// Close flushes the repository, closes the store and finishes the log.
// The first error encountered is returned; later steps still run.
func (a *ShelfApp) Close() error {
	var firstErr error

	if err := a.repo.Close(); err != nil {
		firstErr = fmt.Errorf("flushing repository: %w", err)
	}

	if err := a.store.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}

	a.logger.Debug("operation finished", "operation", a.op.Name, "status", a.op.Status,
		"elapsed", a.clock.Now().Sub(a.op.Started).String())

	if a.closeLog != nil {
		if err := a.closeLog(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log: %w", err)
		}
	}

	return firstErr
}

// writeFileAtomic writes through a temp file in the target directory and
// renames it into place, so readers never see a partial file.
func writeFileAtomic(path string, perm os.FileMode, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
