package main

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"

	"restaurant-checkout-system/activities"
	"restaurant-checkout-system/backend"
	"restaurant-checkout-system/codec"
	"restaurant-checkout-system/workflows"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

// Version information - update this when deploying new versions
const (
	WorkerVersion = "1.0.0"
	BuildID       = "1.0.0"
)

const (
	TaskQueueName = "checkout-processing-queue"
)

func main() {
	// Get Temporal server address from environment or use default
	temporalAddress := os.Getenv("TEMPORAL_ADDRESS")
	if temporalAddress == "" {
		temporalAddress = "localhost:7233"
	}

	// Get the storefront backend URL from environment or use default
	backendURL := os.Getenv("BACKEND_API_URL")
	if backendURL == "" {
		backendURL = "http://localhost:3000"
	}

	// Get or generate encryption key
	encryptionKey := os.Getenv("ENCRYPTION_KEY")
	var keyBytes []byte
	var err error

	if encryptionKey != "" {
		keyBytes, err = hex.DecodeString(encryptionKey)
		if err != nil {
			log.Fatalf("Failed to decode encryption key: %v", err)
		}
	} else {
		// Generate a random 32-byte key for AES-256
		keyBytes = make([]byte, 32)
		if _, err := rand.Read(keyBytes); err != nil {
			log.Fatalf("Failed to generate encryption key: %v", err)
		}
		log.Printf("Generated encryption key: %s", hex.EncodeToString(keyBytes))
		log.Println("Set ENCRYPTION_KEY environment variable to use this key in production")
	}

	// Create data converter with encryption
	dataConverter, err := codec.NewEncryptionDataConverter(keyBytes)
	if err != nil {
		log.Fatalf("Failed to create encryption data converter: %v", err)
	}

	// Create Temporal client with encryption
	c, err := client.Dial(client.Options{
		HostPort:      temporalAddress,
		DataConverter: dataConverter,
	})
	if err != nil {
		log.Fatalf("Unable to create Temporal client: %v", err)
	}
	defer c.Close()

	// Get Build ID from environment or use default
	buildID := os.Getenv("BUILD_ID")
	if buildID == "" {
		buildID = BuildID
	}

	w := worker.New(c, TaskQueueName, worker.Options{
		BuildID:                                buildID,
		MaxConcurrentActivityExecutionSize:     100,
		MaxConcurrentWorkflowTaskExecutionSize: 50,
	})

	// Register workflows
	w.RegisterWorkflow(workflows.CheckoutWorkflow)
	w.RegisterWorkflow(workflows.SettlementWorkflow)

	// Register activities against a shared backend client
	backendClient := backend.NewClient(backendURL)

	checkoutActivities := activities.NewCheckoutActivities(backendClient)
	w.RegisterActivity(checkoutActivities.CreateOrder)
	w.RegisterActivity(checkoutActivities.CreateOrderItems)
	w.RegisterActivity(checkoutActivities.RecordActivity)
	w.RegisterActivity(checkoutActivities.RemoveFromCart)

	settlementActivities := activities.NewSettlementActivities(backendClient)
	w.RegisterActivity(settlementActivities.UpdatePaymentStatus)
	w.RegisterActivity(settlementActivities.RecordTransaction)
	w.RegisterActivity(settlementActivities.RecordPayment)

	log.Println("Starting Temporal worker...")
	log.Printf("Worker Version: %s", WorkerVersion)
	log.Printf("Build ID: %s", buildID)
	log.Printf("Temporal address: %s", temporalAddress)
	log.Printf("Task queue: %s", TaskQueueName)
	log.Printf("Backend API URL: %s", backendURL)
	log.Println("Registered workflows: CheckoutWorkflow, SettlementWorkflow")
	log.Println("Encryption: Enabled")

	// Start worker
	err = w.Run(worker.InterruptCh())
	if err != nil {
		log.Fatalf("Unable to start worker: %v", err)
	}
}
