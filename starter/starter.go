package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"restaurant-checkout-system/codec"
	"restaurant-checkout-system/models"
	"restaurant-checkout-system/payment"
	"restaurant-checkout-system/workflows"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
)

const (
	TaskQueueName = "checkout-processing-queue"
)

func main() {
	// Command line flags
	userID := flag.String("user-id", "", "User ID (optional, auto-generated if not provided)")
	method := flag.String("method", "PayPal", "Payment method (PayPal or GCash)")
	query := flag.Bool("query", false, "Query checkout state")
	workflowID := flag.String("workflow-id", "", "Workflow ID for query operations")
	flag.Parse()

	// Get Temporal server address from environment or use default
	temporalAddress := os.Getenv("TEMPORAL_ADDRESS")
	if temporalAddress == "" {
		temporalAddress = "localhost:7233"
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
		log.Printf("Warning: Using generated encryption key. Set ENCRYPTION_KEY env var to match worker.")
		log.Printf("Generated key: %s", hex.EncodeToString(keyBytes))
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

	ctx := context.Background()

	// Handle query operations
	if *query {
		if *workflowID == "" {
			log.Fatal("Workflow ID is required for query operations. Use -workflow-id flag")
		}
		queryCheckoutState(ctx, c, *workflowID)
		return
	}

	// Run a new checkout
	runCheckout(ctx, c, *userID, models.PaymentMethod(*method))
}

func runCheckout(ctx context.Context, c client.Client, userID string, method models.PaymentMethod) {
	// Generate user ID if not provided
	if userID == "" {
		userID = uuid.New().String()
	}

	req := models.CheckoutRequest{
		UserID:        userID,
		PaymentMethod: method,
		Items: []models.CartItem{
			{
				ItemName:     "Burger",
				Quantity:     2,
				Price:        150.0,
				MenuImage:    "burger.png",
				CategoryName: "Mains",
			},
			{
				ItemName:  "Fries",
				Quantity:  1,
				Price:     80.0,
				MenuImage: "fries.png",
			},
		},
	}

	// Run the payment widget first; the workflow only starts once the
	// provider has confirmed the payment.
	provider, err := payment.For(method)
	if err != nil {
		log.Fatalf("Unable to resolve payment provider: %v", err)
	}

	receipt, err := provider.Initiate(ctx, req.GrandTotal())
	if err != nil {
		log.Fatalf("Payment failed, please try again: %v", err)
	}
	req.ProviderReference = receipt.Reference

	// One checkout per user at a time: a fixed per-user workflow ID makes
	// the server reject a second start while one is running.
	workflowOptions := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("checkout-%s", userID),
		TaskQueue: TaskQueueName,
	}

	log.Printf("Starting checkout for user: %s", userID)
	log.Printf("Grand total: ₱%.2f", req.GrandTotal())
	log.Printf("Payment method: %s", method)
	log.Printf("Workflow ID: %s", workflowOptions.ID)

	we, err := c.ExecuteWorkflow(ctx, workflowOptions, workflows.CheckoutWorkflow, req)
	if err != nil {
		log.Fatalf("Unable to execute workflow: %v", err)
	}

	log.Printf("Started workflow successfully")
	log.Printf("WorkflowID: %s", we.GetID())
	log.Printf("RunID: %s", we.GetRunID())
	log.Println("\nTo query checkout state, run:")
	log.Printf("  go run starter/starter.go -query -workflow-id %s\n", we.GetID())

	// Wait for checkout completion
	log.Println("\nWaiting for checkout to complete...")
	var result models.CheckoutResult
	err = we.Get(ctx, &result)
	if err != nil {
		log.Fatalf("Checkout finished with error: %v", err)
	}

	if result.Succeeded {
		log.Printf("Checkout completed: %s", result.Message)
		log.Printf("Order ID: %s, payment status: %s", result.OrderID, result.PaymentStatus)
	} else {
		log.Printf("Checkout failed (%s at %q): %s", result.Reason, result.FailedStep, result.Message)
		if result.OrderID != "" {
			log.Printf("Order %s was created and is not rolled back", result.OrderID)
		}
	}
}

func queryCheckoutState(ctx context.Context, c client.Client, workflowID string) {
	log.Printf("Querying checkout state: %s", workflowID)

	resp, err := c.QueryWorkflow(ctx, workflowID, "", workflows.QueryState)
	if err != nil {
		log.Fatalf("Failed to query workflow: %v", err)
	}

	var state models.CheckoutState
	if err := resp.Get(&state); err != nil {
		log.Fatalf("Failed to decode query result: %v", err)
	}

	// Pretty print the state
	stateJSON, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal state: %v", err)
	}

	log.Println("\nCheckout State:")
	fmt.Println(string(stateJSON))
}
