package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/journallm/journallm/internal/config"
)

// Drive access errors.
var (
	// ErrNotAuthorized indicates no cached OAuth token exists; run
	// Authorize first.
	ErrNotAuthorized = errors.New("no cached token, authorization required")

	// ErrNoBackups indicates the folder holds no zip backups.
	ErrNoBackups = errors.New("no zip backups found in folder")
)

// Backup describes one backup file found in the Drive folder.
type Backup struct {
	ID      string
	Name    string
	Created time.Time
}

// Downloader fetches journal backups from one Drive folder.
type Downloader struct {
	svc      *drive.Service
	folderID string
	logger   *zap.Logger
}

// NewDownloader builds a Drive client from cached credentials. The
// OAuth token must already exist at cfg.TokenFile; refresh happens
// transparently on use.
func NewDownloader(ctx context.Context, cfg config.DriveConfig, logger *zap.Logger) (*Downloader, error) {
	if cfg.FolderID == "" {
		return nil, fmt.Errorf("drive folder_id is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	oc, err := oauthConfig(cfg)
	if err != nil {
		return nil, err
	}

	token, err := loadToken(cfg.TokenFile)
	if err != nil {
		return nil, err
	}

	client := oauth2.NewClient(ctx, oc.TokenSource(ctx, token))
	svc, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("building drive service: %w", err)
	}

	return &Downloader{svc: svc, folderID: cfg.FolderID, logger: logger}, nil
}

// LatestBackup returns metadata for the most recent zip backup in the
// folder. The Drive API does the sorting.
func (d *Downloader) LatestBackup(ctx context.Context) (*Backup, error) {
	query := fmt.Sprintf("'%s' in parents and trashed=false and mimeType='application/zip'", d.folderID)
	list, err := d.svc.Files.List().
		Q(query).
		OrderBy("createdTime desc").
		PageSize(10).
		Fields("files(id, name, createdTime, mimeType)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("listing backups: %w", err)
	}
	if len(list.Files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoBackups, d.folderID)
	}

	newest := list.Files[0]
	backup := &Backup{ID: newest.Id, Name: newest.Name}
	if created, err := time.Parse(time.RFC3339, newest.CreatedTime); err == nil {
		backup.Created = created
	} else {
		d.logger.Warn("could not parse backup creation time",
			zap.String("value", newest.CreatedTime), zap.Error(err))
	}

	d.logger.Info("selected backup",
		zap.String("name", backup.Name),
		zap.Time("created", backup.Created))
	return backup, nil
}

// Download fetches a backup's content into memory.
func (d *Downloader) Download(ctx context.Context, id string) ([]byte, error) {
	resp, err := d.svc.Files.Get(id).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("downloading backup: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading backup body: %w", err)
	}
	d.logger.Debug("backup downloaded", zap.Int("bytes", len(data)))
	return data, nil
}

// DownloadLatest finds and fetches the newest backup in one call.
func (d *Downloader) DownloadLatest(ctx context.Context) ([]byte, *Backup, error) {
	backup, err := d.LatestBackup(ctx)
	if err != nil {
		return nil, nil, err
	}
	data, err := d.Download(ctx, backup.ID)
	if err != nil {
		return nil, nil, err
	}
	return data, backup, nil
}

// Authorize runs the one-time authorization-code exchange and caches
// the resulting token at cfg.TokenFile. The auth URL goes to out and
// the code is read from in.
func Authorize(ctx context.Context, cfg config.DriveConfig, in io.Reader, out io.Writer) error {
	oc, err := oauthConfig(cfg)
	if err != nil {
		return err
	}

	url := oc.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(out, "Open this URL in your browser, then paste the authorization code:\n%s\n> ", url)

	var code string
	if _, err := fmt.Fscan(in, &code); err != nil {
		return fmt.Errorf("reading authorization code: %w", err)
	}

	token, err := oc.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchanging authorization code: %w", err)
	}
	return saveToken(cfg.TokenFile, token)
}

func oauthConfig(cfg config.DriveConfig) (*oauth2.Config, error) {
	creds, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file %s: %w", cfg.CredentialsFile, err)
	}
	oc, err := google.ConfigFromJSON(creds, drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}
	return oc, nil
}

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w (token file %s)", ErrNotAuthorized, path)
		}
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parsing token file: %w", err)
	}
	return &token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("marshaling token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}
