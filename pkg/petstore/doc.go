// Package petstore provides types, interfaces, and helpers for working with
// the pet-store REST API.
//
// # Overview
//
// The petstore package defines the domain types (Pet, Order, User), the
// resource references used to address them (Ref, Kind) and the interfaces of
// the resource clients (PetsClient, StoreClient, UsersClient). A concrete
// implementation is provided by the petstoreclient package, which wires
// configuration, transport, credentials and the convergence executor.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/petstore-client/pkg/petstore"
//	  "github.com/fivetwenty-io/petstore-client/pkg/petstoreclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := petstoreclient.New(ctx, &petstore.Config{
//	    BaseURL: "https://petstore.swagger.io/v2",
//	    APIKey:  "special-key",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  pet, err := cli.Pets().AddUntilVisible(ctx, &petstore.Pet{Name: "Fluffy", Status: petstore.PetStatusAvailable})
//	  if err != nil { log.Fatal(err) }
//	  _ = pet
//	}
//
// # Eventual consistency
//
// The public store is cache-backed: a resource that was just created may
// still answer 404 for a few seconds, and a deleted one may reappear. The
// *UntilVisible, *UntilReflected and *UntilAbsent methods send the mutation
// once and then poll until the store agrees, see package converge.
//
// # Errors
//
// Non-2xx responses surface as *APIError. Use IsNotFound and StatusCode to
// classify them by status code.
package petstore
