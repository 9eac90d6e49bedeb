package mediacache

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/secmon-lab/warden/pkg/domain/model"
	"github.com/secmon-lab/warden/pkg/domain/types"
	"github.com/secmon-lab/warden/pkg/utils/logging"
	"github.com/secmon-lab/warden/pkg/utils/safe"
)

// Fetcher downloads attachment bytes from the platform.
type Fetcher func(ctx context.Context, url string) ([]byte, error)

// CachedFile is one encrypted attachment on disk.
type CachedFile struct {
	AttachmentID string
	Name         string
	Mimetype     string
	Path         string
}

// Asset is the cache entry for one message that carried attachments.
type Asset struct {
	MessageID   types.MessageID
	ChannelID   types.ChannelID
	CommunityID types.CommunityID
	AuthorID    types.UserID
	Files       []CachedFile
}

// RevealedFile is a decrypted attachment returned for re-hosting.
type RevealedFile struct {
	Name     string
	Mimetype string
	Data     []byte
}

// Cache speculatively stores message attachments encrypted at rest. The key
// is generated at construction and never leaves the process, so anything
// still on disk after a crash is unrecoverable by design: the retention
// window is exactly one process lifetime.
type Cache struct {
	dir   string
	aead  cipher.AEAD
	fetch Fetcher

	mu      sync.Mutex
	entries map[types.MessageID]*Asset
}

// New creates a Cache writing ciphertext under dir, downloading attachment
// bytes through fetch.
func New(dir string, fetch Fetcher) (*Cache, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, goerr.Wrap(err, "failed to create media cache directory", goerr.V("dir", dir))
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, goerr.Wrap(err, "failed to generate media cache key")
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize AEAD")
	}

	return &Cache{
		dir:     dir,
		aead:    aead,
		fetch:   fetch,
		entries: make(map[types.MessageID]*Asset),
	}, nil
}

// Capture encrypts and stores every attachment of the message. It is
// best-effort per attachment: a failed download is logged and skipped, the
// remaining attachments are still cached. Messages without attachments are
// ignored.
func (c *Cache) Capture(ctx context.Context, msg *model.Message) {
	if len(msg.Attachments) == 0 {
		return
	}

	asset := &Asset{
		MessageID:   msg.ID,
		ChannelID:   msg.ChannelID,
		CommunityID: msg.CommunityID,
		AuthorID:    msg.AuthorID,
	}

	for idx, att := range msg.Attachments {
		data, err := c.fetch(ctx, att.URL)
		if err != nil {
			logging.From(ctx).Warn("failed to fetch attachment, skipping",
				"message_id", msg.ID, "attachment", att.Name, "error", err.Error())
			continue
		}

		path := c.blobPath(msg.ID, idx)
		if err := c.seal(path, data); err != nil {
			logging.From(ctx).Warn("failed to store attachment ciphertext, skipping",
				"message_id", msg.ID, "attachment", att.Name, "error", err.Error())
			continue
		}

		asset.Files = append(asset.Files, CachedFile{
			AttachmentID: att.ID,
			Name:         att.Name,
			Mimetype:     att.Mimetype,
			Path:         path,
		})
	}

	if len(asset.Files) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[msg.ID] = asset
}

// Has reports whether the cache holds an entry for the message.
func (c *Cache) Has(messageID types.MessageID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[messageID]
	return ok
}

// Evict deletes all ciphertext files for a message and drops its entry.
// Evicting an unknown message is a no-op.
func (c *Cache) Evict(ctx context.Context, messageID types.MessageID) {
	c.mu.Lock()
	asset, ok := c.entries[messageID]
	if ok {
		delete(c.entries, messageID)
	}
	c.mu.Unlock()

	if !ok {
		return
	}
	for _, f := range asset.Files {
		safe.Remove(ctx, f.Path)
	}
}

// Reveal decrypts and returns the cached bytes for a message, along with the
// entry metadata. The entry stays cached: the caller evicts once the content
// has been permanently surfaced. Returns nil, nil if nothing is cached.
func (c *Cache) Reveal(ctx context.Context, messageID types.MessageID) (*Asset, []RevealedFile, error) {
	c.mu.Lock()
	asset, ok := c.entries[messageID]
	c.mu.Unlock()

	if !ok {
		return nil, nil, nil
	}

	files := make([]RevealedFile, 0, len(asset.Files))
	for _, f := range asset.Files {
		data, err := c.open(f.Path)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to decrypt cached attachment",
				goerr.V("message_id", messageID), goerr.V("name", f.Name))
		}
		files = append(files, RevealedFile{Name: f.Name, Mimetype: f.Mimetype, Data: data})
	}

	return asset, files, nil
}

// SplitRemoved handles a message edit that dropped some attachments: files
// whose attachment ID is not in keptIDs are decrypted, removed from disk and
// returned for re-hosting; kept files remain cached under the same message.
// If nothing remains afterwards the entry itself is dropped.
func (c *Cache) SplitRemoved(ctx context.Context, messageID types.MessageID, keptIDs []string) (*Asset, []RevealedFile, error) {
	kept := make(map[string]bool, len(keptIDs))
	for _, id := range keptIDs {
		kept[id] = true
	}

	c.mu.Lock()
	asset, ok := c.entries[messageID]
	c.mu.Unlock()

	if !ok {
		return nil, nil, nil
	}

	var removed []RevealedFile
	var remaining []CachedFile
	for _, f := range asset.Files {
		if kept[f.AttachmentID] {
			remaining = append(remaining, f)
			continue
		}

		data, err := c.open(f.Path)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to decrypt removed attachment",
				goerr.V("message_id", messageID), goerr.V("name", f.Name))
		}
		removed = append(removed, RevealedFile{Name: f.Name, Mimetype: f.Mimetype, Data: data})
		safe.Remove(ctx, f.Path)
	}

	c.mu.Lock()
	if len(remaining) == 0 {
		delete(c.entries, messageID)
	} else {
		asset.Files = remaining
	}
	c.mu.Unlock()

	return asset, removed, nil
}

func (c *Cache) blobPath(messageID types.MessageID, idx int) string {
	// Slack message timestamps contain a dot; keep file names flat.
	name := strings.NewReplacer(".", "_", "/", "_").Replace(messageID.String())
	return filepath.Join(c.dir, fmt.Sprintf("%s_%d.enc", name, idx))
}

// seal writes nonce-prefixed authenticated ciphertext to path.
func (c *Cache) seal(path string, plaintext []byte) error {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return goerr.Wrap(err, "failed to generate nonce")
	}

	sealed := c.aead.Seal(nonce, nonce, plaintext, nil)
	if err := os.WriteFile(path, sealed, 0600); err != nil {
		return goerr.Wrap(err, "failed to write ciphertext", goerr.V("path", path))
	}
	return nil
}

func (c *Cache) open(path string) ([]byte, error) {
	sealed, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read ciphertext", goerr.V("path", path))
	}
	if len(sealed) < c.aead.NonceSize() {
		return nil, goerr.New("ciphertext too short", goerr.V("path", path))
	}

	nonce, body := sealed[:c.aead.NonceSize()], sealed[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, body, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decrypt ciphertext", goerr.V("path", path))
	}
	return plaintext, nil
}
