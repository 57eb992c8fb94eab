package main

import (
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"

	"github.com/calmhive/pomodoro-bot-discord/internal/config"
	"github.com/calmhive/pomodoro-bot-discord/internal/handlers/discord"
)

// Registers the slash commands with Discord. Run once per command
// change; global commands can take up to an hour to propagate.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dg, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		log.Fatalf("Failed to create Discord session: %v", err)
	}

	log.Println("Started refreshing application (/) commands.")

	for _, cmd := range discord.Commands() {
		if _, err := dg.ApplicationCommandCreate(cfg.Discord.AppID, cfg.Discord.GuildID, cmd); err != nil {
			log.Fatalf("Failed to create command %s: %v", cmd.Name, err)
		}
		log.Printf("Registered command: %s", cmd.Name)
	}

	log.Println("Successfully reloaded application (/) commands.")
}
