package banner

import (
	"fmt"

	"pocketchat/pkg/config"
)

const banner = `
██████╗  ██████╗  ██████╗██╗  ██╗███████╗████████╗ ██████╗██╗  ██╗ █████╗ ████████╗
██╔══██╗██╔═══██╗██╔════╝██║ ██╔╝██╔════╝╚══██╔══╝██╔════╝██║  ██║██╔══██╗╚══██╔══╝
██████╔╝██║   ██║██║     █████╔╝ █████╗     ██║   ██║     ███████║███████║   ██║
██╔═══╝ ██║   ██║██║     ██╔═██╗ ██╔══╝     ██║   ██║     ██╔══██║██╔══██║   ██║
██║     ╚██████╔╝╚██████╗██║  ██╗███████╗   ██║   ╚██████╗██║  ██║██║  ██║   ██║
╚═╝      ╚═════╝  ╚═════╝╚═╝  ╚═╝╚══════╝   ╚═╝    ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝
`

// Print shows the startup summary: where the control surface listens,
// where state lives, and what the toggles resolved to.
func Print(cfg *config.Config, dbPath, source, version string) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", cfg.Addr())
	fmt.Printf("DB Path:  %s\n", dbPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	if source != "" {
		fmt.Printf("Config:   %s\n", source)
	}

	if cfg.Activity.Enabled {
		fmt.Printf("- Activity monitor: enabled (interval=%s)\n", cfg.Activity.Interval.Duration())
	} else {
		fmt.Println("- Activity monitor: disabled")
	}
	if cfg.Backup.Enabled {
		cron := cfg.Backup.Cron
		if cron == "" {
			cron = "0 2 * * *"
		}
		fmt.Printf("- Chat export: enabled (cron=%s)\n", cron)
	} else {
		fmt.Println("- Chat export: disabled")
	}
	if cfg.Client.SeedDemo {
		fmt.Println("- Demo chats: seeded on fresh store")
	}

	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("GET  /v1/chats                      - List chats")
	fmt.Println("POST /v1/chats                      - Register a chat")
	fmt.Println("GET  /v1/chats/{id}/messages        - Chat history")
	fmt.Println("POST /v1/chats/{id}/messages        - Send a message")
	fmt.Println("POST /v1/chats/{id}/read            - Mark messages read")
	fmt.Println("POST /v1/network                    - Flip connectivity")
	fmt.Println("POST /v1/sync                       - Drain the outbox")
	fmt.Println("GET  /metrics                       - Prometheus metrics")

	fmt.Println("\n== Examples ===================================================")
	fmt.Printf("curl -X POST 'http://%s/v1/chats/chat-1/messages' -d '{\"content\":\"hello\"}'\n", cfg.Addr())
	fmt.Printf("curl -X POST 'http://%s/v1/network' -d '{\"online\":false}'\n", cfg.Addr())

	fmt.Println("\n== Logs: =================================================")
}
