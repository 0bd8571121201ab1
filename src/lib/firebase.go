package lib

import (
	"artbook/src/config"
	"context"
	"path"
	"sync"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

var (
	firebaseMu     sync.Mutex
	innerApp       *firebase.App
	innerMessaging *messaging.Client
)

func getOpts() option.ClientOption {
	return option.WithCredentialsFile(path.Join(config.Get().SecretsDir, "admin-sdk-credentials.json"))
}

func GetFirebaseMessaging(ctx context.Context) (*messaging.Client, error) {
	firebaseMu.Lock()
	defer firebaseMu.Unlock()
	if innerMessaging != nil {
		return innerMessaging, nil
	}
	if innerApp == nil {
		app, err := firebase.NewApp(ctx, nil, getOpts())
		if err != nil {
			return nil, err
		}
		innerApp = app
	}
	msg, err := innerApp.Messaging(ctx)
	if err != nil {
		return nil, err
	}
	innerMessaging = msg
	return msg, nil
}
