package service

import (
	"meeting_qa/internal/config"
	"meeting_qa/internal/identity"
	"meeting_qa/internal/repository"
)

type Services struct {
	Meeting   *MeetingService
	Relay     *RelayService
	WebSocket *WebSocketManager
	Identity  *identity.Client
}

func NewServices(repos *repository.Repositories, cfg *config.Config) *Services {
	var credentials CredentialVerifier = PlainCredential{}
	if cfg.Auth.HashPasswords {
		credentials = BcryptCredential{}
	}

	meetingService := NewMeetingService(repos.Meeting, credentials)
	wsManager := NewWebSocketManager(meetingService)
	completionClient := NewCompletionClient(cfg.OpenAI)
	relayService := NewRelayService(repos.Meeting, completionClient, wsManager)

	return &Services{
		Meeting:   meetingService,
		Relay:     relayService,
		WebSocket: wsManager,
		Identity:  identity.NewClient(cfg.Auth.IdentityBaseURL, cfg.Auth.IdentityAPIKey),
	}
}
