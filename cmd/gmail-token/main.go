// Command gmail-token walks through the OAuth consent flow and prints the
// refresh token the gmail notifier driver needs.
package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"greeting-card-go/internal/config"
	"greeting-card-go/internal/notifier"
)

func main() {
	redirectURL := flag.String("redirect", "http://localhost:8080/callback", "OAuth redirect URL registered for the client")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}

	gmailCfg := cfg.Notifier.Gmail
	if gmailCfg.ClientID == "" || gmailCfg.ClientSecret == "" {
		logrus.Fatal("Please set GMAIL_CLIENT_ID and GMAIL_CLIENT_SECRET environment variables")
	}

	oauthCfg := notifier.OAuthConfig(gmailCfg, *redirectURL)

	authURL := oauthCfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Go to the following link in your browser: %v\n", authURL)
	fmt.Println("\nAfter authorization, you'll be redirected to a URL. Copy the 'code' parameter from that URL.")

	var authCode string
	fmt.Print("\nEnter the authorization code: ")
	if _, err := fmt.Scan(&authCode); err != nil {
		logrus.Fatalf("failed to read authorization code: %v", err)
	}

	tok, err := oauthCfg.Exchange(context.Background(), authCode)
	if err != nil {
		logrus.Fatalf("Unable to retrieve token from web: %v", err)
	}
	if tok.RefreshToken == "" {
		logrus.Fatal("No refresh token returned; revoke the app's access and try again")
	}

	fmt.Println("\nAdd the refresh token to your environment and select the gmail notifier:")
	fmt.Printf("export GMAIL_REFRESH_TOKEN=\"%s\"\n", tok.RefreshToken)
	fmt.Println("export NOTIFIER_DRIVER=gmail")
}
