package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lindsay-precast/backend/design-service/handlers"
	"lindsay-precast/backend/design-service/logging"
	"lindsay-precast/backend/design-service/middleware"
	"lindsay-precast/backend/design-service/services"
)

// createUniqueIndex enforces uniqueness on a field at the database level; the
// project number allocator and customer/user emails rely on it as the backstop
// against concurrent duplicates.
func createUniqueIndex(collection *mongo.Collection, field string) error {
	indexModel := mongo.IndexModel{
		Keys:    bson.M{field: 1},
		Options: options.Index().SetUnique(true),
	}
	_, err := collection.Indexes().CreateOne(context.TODO(), indexModel)
	if err != nil {
		return fmt.Errorf("failed to create unique index on %s: %v", field, err)
	}
	return nil
}

func main() {
	logging.InitLogger()

	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Design Service...")
	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_WARNING, Description: No .env file loaded: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	mongoDBName := os.Getenv("MONGO_DB_NAME")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	if mongoDBName == "" {
		mongoDBName = "design_db"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection failed: %v", err)
	}
	defer client.Disconnect(context.TODO())

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

	db := client.Database(mongoDBName)
	projectsCollection := db.Collection("projects")
	customersCollection := db.Collection("customers")
	usersCollection := db.Collection("users")
	libraryCollection := db.Collection("library")

	if err := createUniqueIndex(projectsCollection, "projectNumber"); err != nil {
		logging.Logger.Fatal(err)
	}
	if err := createUniqueIndex(customersCollection, "contactInfo.email"); err != nil {
		logging.Logger.Fatal(err)
	}
	if err := createUniqueIndex(usersCollection, "email"); err != nil {
		logging.Logger.Fatal(err)
	}

	customerBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "CustomerHistoryCB",
		MaxRequests: 1,
		Timeout:     2 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})

	projectService := services.NewProjectService(projectsCollection, customersCollection, customerBreaker)
	customerService := services.NewCustomerService(customersCollection)
	libraryService := services.NewLibraryService(libraryCollection)
	userService := services.NewUserService(usersCollection)

	projectHandler := handlers.NewProjectHandler(projectService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	libraryHandler := handlers.NewLibraryHandler(libraryService)
	userHandler := handlers.NewUserHandler(userService)
	dashboardHandler := handlers.NewDashboardHandler(projectService)

	r := mux.NewRouter()

	// Public auth routes
	r.HandleFunc("/api/auth/register", userHandler.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", userHandler.Login).Methods("POST")

	// Everything else requires a valid token
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.JWTAuthMiddleware)

	api.HandleFunc("/auth/profile", userHandler.GetProfile).Methods("GET")
	api.HandleFunc("/auth/profile", userHandler.UpdateProfile).Methods("PATCH")

	api.HandleFunc("/projects/allocate-number", projectHandler.AllocateProjectNumber).Methods("GET")
	api.HandleFunc("/projects", projectHandler.CreateProject).Methods("POST")
	api.HandleFunc("/projects", projectHandler.ListProjects).Methods("GET")
	api.HandleFunc("/projects/{id}", projectHandler.GetProjectByID).Methods("GET")
	api.HandleFunc("/projects/{id}", projectHandler.UpdateProject).Methods("PATCH")
	api.HandleFunc("/projects/{id}", projectHandler.DeleteProject).Methods("DELETE")
	api.HandleFunc("/projects/{id}/status", projectHandler.SetProjectStatus).Methods("PUT")
	api.HandleFunc("/projects/{id}/production", projectHandler.SendToProduction).Methods("POST")
	api.HandleFunc("/projects/{id}/time", projectHandler.TrackTime).Methods("POST")
	api.HandleFunc("/projects/{id}/rfis", projectHandler.AddRFI).Methods("POST")
	api.HandleFunc("/projects/{id}/rfis/{rfiId}", projectHandler.AnswerRFI).Methods("PATCH")

	api.HandleFunc("/customers", customerHandler.CreateCustomer).Methods("POST")
	api.HandleFunc("/customers", customerHandler.ListCustomers).Methods("GET")
	api.HandleFunc("/customers/{id}", customerHandler.GetCustomerByID).Methods("GET")
	api.HandleFunc("/customers/{id}", customerHandler.UpdateCustomer).Methods("PATCH")
	api.HandleFunc("/customers/{id}", customerHandler.DeleteCustomer).Methods("DELETE")

	api.HandleFunc("/library", libraryHandler.CreateTemplate).Methods("POST")
	api.HandleFunc("/library", libraryHandler.ListTemplates).Methods("GET")
	api.HandleFunc("/library/{id}", libraryHandler.GetTemplateByID).Methods("GET")
	api.HandleFunc("/library/{id}", libraryHandler.UpdateTemplate).Methods("PATCH")
	api.HandleFunc("/library/{id}", libraryHandler.DeactivateTemplate).Methods("DELETE")
	api.HandleFunc("/library/{id}/use", libraryHandler.UseTemplate).Methods("POST")

	api.HandleFunc("/dashboard", dashboardHandler.GetStats).Methods("GET")

	corsRouter := enableCORS(r)

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: SERVER_PORT is not set in the environment variables.")
	}

	serverAddress := fmt.Sprintf(":%s", serverPort)
	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", serverAddress)

	if err := http.ListenAndServe(serverAddress, corsRouter); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}

// enableCORS allows the front-end application to call the API.
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
