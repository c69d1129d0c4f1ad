// Package petstoreclient provides the primary entry point for constructing a
// pet-store API client that implements the petstore.Client interface.
//
// It layers configuration, HTTP transport, API key and session credentials,
// and the convergence executor on top of the resource interfaces and types
// defined in the petstore package. Most applications import petstoreclient to
// build a client, then use Pets(), Store() and Users().
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//	  "time"
//
//	  "github.com/fivetwenty-io/petstore-client/pkg/petstore"
//	  "github.com/fivetwenty-io/petstore-client/pkg/petstoreclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  cli, err := petstoreclient.New(ctx, &petstore.Config{
//	    BaseURL: "petstore.swagger.io/v2", // https:// is added
//	    APIKey:  "special-key",
//	    Convergence: petstore.ConvergenceConfig{
//	      MaxAttempts: 5,
//	      BaseDelay:   time.Second,
//	    },
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Returns once a fetch by id sees the new pet.
//	  pet, err := cli.Pets().AddUntilVisible(ctx, &petstore.Pet{Name: "Fluffy", Status: petstore.PetStatusAvailable})
//	  if err != nil { log.Fatal(err) }
//
//	  // Returns once the pet is gone; deleting twice is not an error.
//	  _ = cli.Pets().DeleteUntilAbsent(ctx, pet.ID)
//	}
//
// # Helpers
//
// NewWithEndpoint, NewWithAPIKey and NewPublic wrap New with the appropriate
// configuration.
package petstoreclient
