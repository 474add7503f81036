package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.temporal.io/sdk/client"

	"restaurant-checkout-system/cartstore"
	"restaurant-checkout-system/codec"
)

const (
	defaultPort   = "8080"
	taskQueueName = "checkout-processing-queue"
)

// gatewayServer is the client-facing surface of the checkout system: it
// receives the payment widget callbacks, owns the process-wide cart
// store and the per-user busy guard, and reports exactly one
// notification per checkout attempt.
type gatewayServer struct {
	runner   checkoutRunner
	cart     *cartstore.Store
	busy     *busyGuard
	notifier notifier
	metrics  *checkoutMetrics
	log      *logrus.Logger
}

func main() {
	log := logrus.New()
	log.Level = logrus.DebugLevel
	log.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
		TimestampFormat: time.RFC3339Nano,
	}
	log.Out = os.Stdout

	temporalAddress := os.Getenv("TEMPORAL_ADDRESS")
	if temporalAddress == "" {
		temporalAddress = "localhost:7233"
	}

	encryptionKey := os.Getenv("ENCRYPTION_KEY")
	var keyBytes []byte
	var err error

	if encryptionKey != "" {
		keyBytes, err = hex.DecodeString(encryptionKey)
		if err != nil {
			log.Fatalf("Failed to decode encryption key: %v", err)
		}
	} else {
		keyBytes = make([]byte, 32)
		if _, err := rand.Read(keyBytes); err != nil {
			log.Fatalf("Failed to generate encryption key: %v", err)
		}
		log.Warnf("Using generated encryption key; set ENCRYPTION_KEY to match the worker. Generated key: %s", hex.EncodeToString(keyBytes))
	}

	dataConverter, err := codec.NewEncryptionDataConverter(keyBytes)
	if err != nil {
		log.Fatalf("Failed to create encryption data converter: %v", err)
	}

	c, err := client.Dial(client.Options{
		HostPort:      temporalAddress,
		DataConverter: dataConverter,
	})
	if err != nil {
		log.Fatalf("Unable to create Temporal client: %v", err)
	}
	defer c.Close()

	svc := &gatewayServer{
		runner:   &temporalRunner{client: c, taskQueue: taskQueueName},
		cart:     cartstore.New(),
		busy:     newBusyGuard(),
		notifier: &logNotifier{log: log},
		metrics:  newCheckoutMetrics(),
		log:      log,
	}

	srvPort := defaultPort
	if os.Getenv("PORT") != "" {
		srvPort = os.Getenv("PORT")
	}
	addr := os.Getenv("LISTEN_ADDR")

	r := mux.NewRouter()
	r.HandleFunc("/checkout/{userId}", svc.checkoutHandler).Methods(http.MethodPost)
	r.HandleFunc("/checkout/{userId}/error", svc.paymentErrorHandler).Methods(http.MethodPost)
	r.HandleFunc("/cart/{userId}", svc.viewCartHandler).Methods(http.MethodGet)
	r.HandleFunc("/cart/{userId}/items", svc.addToCartHandler).Methods(http.MethodPost)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/_healthz", func(w http.ResponseWriter, _ *http.Request) { fmt.Fprint(w, "ok") })

	log.Infof("Checkout gateway listening on %s:%s", addr, srvPort)
	log.Infof("Temporal address: %s", temporalAddress)
	log.Fatal(http.ListenAndServe(addr+":"+srvPort, r))
}
