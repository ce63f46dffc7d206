package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adhocore/gronx"

	"pocketchat/pkg/config"
	"pocketchat/pkg/logger"
	"pocketchat/pkg/models"
	"pocketchat/pkg/state"
	"pocketchat/pkg/store"
)

var storedCfg *config.Config

// SetConfig stores the config so admin triggers and tests can invoke
// backup runs on-demand.
func SetConfig(cfg *config.Config) {
	storedCfg = cfg
}

// RunImmediate triggers a single export run using the stored config.
func RunImmediate() error {
	if storedCfg == nil {
		return fmt.Errorf("no config registered for backup run")
	}
	dir := exportDir(storedCfg)
	if dir == "" {
		return fmt.Errorf("state paths not initialized")
	}
	return runOnce(storedCfg, dir)
}

// Start starts the export scheduler if enabled. Returns a cancel func.
func Start(ctx context.Context, cfg *config.Config) (context.CancelFunc, error) {
	if !cfg.Backup.Enabled {
		logger.Info("backup_disabled")
		return func() {}, nil
	}

	dir := exportDir(cfg)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		logger.Error("backup_path_create_failed", "path", dir, "error", err)
		return nil, err
	}

	// empty cron defaults to daily @02:00
	cronExpr := cfg.Backup.Cron
	if cronExpr == "" {
		cronExpr = "0 2 * * *"
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("backup_invalid_cron", "cron", cfg.Backup.Cron)
		return nil, fmt.Errorf("invalid backup cron expression: %s", cfg.Backup.Cron)
	}

	logger.Info("backup_enabled", "cron", cronExpr, "path", dir)
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, cfg, dir, cronExpr)
	return cancel, nil
}

// exportDir resolves the target folder: explicit config dir wins,
// otherwise the state/backup folder under the DB path.
func exportDir(cfg *config.Config) string {
	if cfg.Backup.Dir != "" {
		return cfg.Backup.Dir
	}
	return state.PathsVar.Backup
}

// runScheduler computes the next tick for the configured cron expression
// via gronx and sleeps until that time.
func runScheduler(ctx context.Context, cfg *config.Config, dir, cronExpr string) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("backup_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("backup_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		wait := time.Until(next)
		if wait <= 0 {
			wait = time.Second
		}
		select {
		case <-time.After(wait):
			if err := runOnce(cfg, dir); err != nil {
				logger.Error("backup_run_error", "error", err)
			}
		case <-ctx.Done():
			logger.Info("backup_scheduler_stopping")
			return
		}
	}
}

// exportRecord is one rendered message line in an export file.
type exportRecord struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
	Type    string `json:"type"`
	Status  string `json:"status"`
	Read    bool   `json:"read"`
	Time    string `json:"time"`
}

type exportDoc struct {
	Chat       models.Chat    `json:"chat"`
	ExportedAt string         `json:"exported_at"`
	Messages   []exportRecord `json:"messages"`
}

// ExportChat renders one chat's full history, with sender display names
// and read state resolved, as a JSON document.
func ExportChat(chatID string) ([]byte, error) {
	chat, err := store.GetChat(chatID)
	if err != nil {
		return nil, fmt.Errorf("load chat %s: %w", chatID, err)
	}
	msgs, err := store.ListMessages(chatID)
	if err != nil {
		return nil, fmt.Errorf("load messages %s: %w", chatID, err)
	}
	reads, err := store.ListReceipts(chatID)
	if err != nil {
		return nil, fmt.Errorf("load receipts %s: %w", chatID, err)
	}

	doc := exportDoc{
		Chat:       chat,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Messages:   make([]exportRecord, 0, len(msgs)),
	}
	for _, m := range msgs {
		doc.Messages = append(doc.Messages, exportRecord{
			Sender:  senderName(chat, m),
			Content: m.Content,
			Type:    string(m.Type),
			Status:  string(m.Status),
			Read:    m.Role == models.RoleAssistant && reads[m.TS],
			Time:    time.Unix(0, m.TS).UTC().Format(time.RFC3339),
		})
	}
	return json.MarshalIndent(doc, "", "  ")
}

// senderName resolves the display name for a message: the user's own
// messages are labelled "me", group messages carry their sender name,
// and one-to-one assistant messages fall back to the chat name.
func senderName(chat models.Chat, m models.Message) string {
	if m.Role == models.RoleUser {
		return "me"
	}
	if m.SenderName != "" {
		for _, mem := range chat.Members {
			if mem.OriginalName == m.SenderName {
				return mem.DisplayName()
			}
		}
		return m.SenderName
	}
	return chat.Name
}

// runOnce exports every chat into a timestamped folder under dir. A chat
// whose encoded history exceeds the configured cap is skipped, not
// truncated.
func runOnce(cfg *config.Config, dir string) error {
	chats, err := store.ListChats()
	if err != nil {
		return fmt.Errorf("list chats: %w", err)
	}

	stamp := time.Now().UTC().Format("20060102T150405")
	runDir := filepath.Join(dir, stamp)
	if err := os.MkdirAll(runDir, 0o700); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	maxSize := uint64(cfg.Backup.MaxExportSize)
	var wrote int
	for _, c := range chats {
		b, err := ExportChat(c.ID)
		if err != nil {
			logger.Warn("backup_chat_failed", "chat", c.ID, "error", err)
			continue
		}
		if maxSize > 0 && uint64(len(b)) > maxSize {
			logger.Warn("backup_chat_too_large", "chat", c.ID, "size", len(b), "cap", maxSize)
			continue
		}
		path := filepath.Join(runDir, fmt.Sprintf("chat-%s.json", c.ID))
		if err := os.WriteFile(path, b, 0o600); err != nil {
			logger.Error("backup_write_failed", "path", path, "error", err)
			continue
		}
		wrote++
	}
	logger.Info("backup_run_complete", "dir", runDir, "chats", wrote)
	return nil
}
