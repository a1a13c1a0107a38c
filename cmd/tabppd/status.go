package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"

	grpcAdapter "github.com/Josinosle/TABPP/internal/adapters/grpc"
	"github.com/Josinosle/TABPP/pkg/tlsconfig"
)

var (
	statusAddr    string
	statusCert    string
	statusKey     string
	statusCA      string
	statusHistory time.Duration
	statusTimeout time.Duration

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Query a running tabppd over gRPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context())
		},
	}
)

func init() {
	statusCmd.Flags().StringVar(&statusAddr, "addr", "127.0.0.1:50051", "Address of the status server")
	statusCmd.Flags().StringVar(&statusCert, "tls-cert", "", "Client certificate for mTLS")
	statusCmd.Flags().StringVar(&statusKey, "tls-key", "", "Client private key for mTLS")
	statusCmd.Flags().StringVar(&statusCA, "tls-ca", "", "CA certificate for mTLS")
	statusCmd.Flags().DurationVar(&statusHistory, "history", -1, "Also list transitions from this window (0 lists all)")
	statusCmd.Flags().DurationVar(&statusTimeout, "timeout", 5*time.Second, "Request timeout")
}

func runStatus(parent context.Context) error {
	ctx, cancel := context.WithTimeout(parent, statusTimeout)
	defer cancel()

	creds := insecure.NewCredentials()
	if statusCert != "" {
		tlsCfg, err := tlsconfig.LoadClientTLS(statusCert, statusKey, statusCA)
		if err != nil {
			return fmt.Errorf("load TLS config: %w", err)
		}
		creds = credentials.NewTLS(tlsCfg)
	}

	conn, err := grpc.NewClient(statusAddr, grpc.WithTransportCredentials(creds))
	if err != nil {
		return fmt.Errorf("dial %s: %w", statusAddr, err)
	}
	defer conn.Close()

	client := grpcAdapter.NewStatusClient(conn)
	marshal := protojson.MarshalOptions{Multiline: true}

	status, err := client.GetStatus(ctx)
	if err != nil {
		return err
	}
	out, err := marshal.Marshal(status)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(out))

	if statusHistory < 0 {
		return nil
	}
	transitions, err := client.ListTransitions(ctx, statusHistory)
	if err != nil {
		return err
	}
	out, err = marshal.Marshal(transitions)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(out))
	return nil
}
