// Package mocks provides gomock implementations of the contract interfaces.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./mocks
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=slack_client_mock.go github.com/diegoclair/screenshot-bot/internal/domain/contract SlackClient
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=service_mock.go github.com/diegoclair/screenshot-bot/internal/domain/contract Fetcher,Deliverer,Heartbeat,Pipeline,Connection,TriggerService,CommandHandler
