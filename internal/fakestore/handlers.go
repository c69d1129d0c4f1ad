package fakestore

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

func (s *Server) createPet(writer http.ResponseWriter, request *http.Request) {
	var pet petstore.Pet

	if err := decodeBody(request, &pet); err != nil {
		writeMessage(writer, http.StatusBadRequest, "unknown", "bad input")
		return
	}

	s.mu.Lock()
	if pet.ID == 0 {
		pet.ID = s.allocateID()
	}

	err := s.put(petstore.KindPet, strconv.FormatInt(pet.ID, 10), pet, s.lag)
	s.mu.Unlock()

	if err != nil {
		writeStoreError(writer, err)
		return
	}

	writeJSON(writer, http.StatusOK, pet)
}

func (s *Server) updatePet(writer http.ResponseWriter, request *http.Request) {
	var pet petstore.Pet

	if err := decodeBody(request, &pet); err != nil || pet.ID == 0 {
		writeMessage(writer, http.StatusBadRequest, "unknown", "bad input")
		return
	}

	// The store upserts on PUT.
	s.mu.Lock()
	err := s.put(petstore.KindPet, strconv.FormatInt(pet.ID, 10), pet, s.lag)
	s.mu.Unlock()

	if err != nil {
		writeStoreError(writer, err)
		return
	}

	writeJSON(writer, http.StatusOK, pet)
}

func (s *Server) getPet(writer http.ResponseWriter, request *http.Request) {
	var pet petstore.Pet

	if !s.fetch(petstore.KindPet, request.PathValue("petId"), &pet) {
		writeMessage(writer, http.StatusNotFound, "error", "Pet not found")
		return
	}

	writeJSON(writer, http.StatusOK, pet)
}

func (s *Server) findPetsByStatus(writer http.ResponseWriter, request *http.Request) {
	wanted := map[petstore.PetStatus]bool{}
	for _, status := range request.URL.Query()["status"] {
		wanted[petstore.PetStatus(status)] = true
	}

	pets := []petstore.Pet{}

	for _, pet := range s.visiblePets() {
		if wanted[pet.Status] {
			pets = append(pets, pet)
		}
	}

	writeJSON(writer, http.StatusOK, pets)
}

func (s *Server) updatePetWithForm(writer http.ResponseWriter, request *http.Request) {
	key := request.PathValue("petId")
	if _, ok := parseID(key); !ok {
		writeMessage(writer, http.StatusNotFound, "unknown", "java.lang.NumberFormatException")
		return
	}

	if err := request.ParseForm(); err != nil {
		writeMessage(writer, http.StatusBadRequest, "unknown", "bad input")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var pet petstore.Pet
	if !s.current(petstore.KindPet, key, &pet) {
		writeMessage(writer, http.StatusNotFound, "unknown", "not found")
		return
	}

	if name := request.PostForm.Get("name"); name != "" {
		pet.Name = name
	}

	if status := request.PostForm.Get("status"); status != "" {
		pet.Status = petstore.PetStatus(status)
	}

	if err := s.put(petstore.KindPet, key, pet, s.lag); err != nil {
		writeStoreError(writer, err)
		return
	}

	writeMessage(writer, http.StatusOK, "unknown", key)
}

func (s *Server) deletePet(writer http.ResponseWriter, request *http.Request) {
	s.deleteByKey(writer, petstore.KindPet, request.PathValue("petId"))
}

func (s *Server) uploadImage(writer http.ResponseWriter, request *http.Request) {
	key := request.PathValue("petId")

	if err := request.ParseMultipartForm(maxUploadSize); err != nil {
		writeMessage(writer, http.StatusBadRequest, "unknown", "bad input")
		return
	}

	file, header, err := request.FormFile("file")
	if err != nil {
		writeMessage(writer, http.StatusBadRequest, "unknown", "file required")
		return
	}
	defer func() { _ = file.Close() }()

	size, err := io.Copy(io.Discard, file)
	if err != nil {
		writeMessage(writer, http.StatusBadRequest, "unknown", "bad input")
		return
	}

	s.mu.Lock()
	var pet petstore.Pet
	if s.current(petstore.KindPet, key, &pet) {
		pet.PhotoURLs = append(pet.PhotoURLs, "./"+header.Filename)
		err = s.put(petstore.KindPet, key, pet, s.lag)
	}
	s.mu.Unlock()

	if err != nil {
		writeStoreError(writer, err)
		return
	}

	message := fmt.Sprintf("additionalMetadata: %s\nFile uploaded to ./%s, %d bytes",
		request.FormValue("additionalMetadata"), header.Filename, size)

	writeMessage(writer, http.StatusOK, "unknown", message)
}

func (s *Server) inventory(writer http.ResponseWriter, _ *http.Request) {
	counts := petstore.Inventory{}
	for _, pet := range s.visiblePets() {
		counts[string(pet.Status)]++
	}

	writeJSON(writer, http.StatusOK, counts)
}

func (s *Server) placeOrder(writer http.ResponseWriter, request *http.Request) {
	var order petstore.Order

	if err := decodeBody(request, &order); err != nil {
		writeMessage(writer, http.StatusBadRequest, "unknown", "Invalid Order")
		return
	}

	s.mu.Lock()
	if order.ID == 0 {
		order.ID = s.allocateID()
	}

	if order.Status == "" {
		order.Status = petstore.OrderStatusPlaced
	}

	err := s.put(petstore.KindOrder, strconv.FormatInt(order.ID, 10), order, s.lag)
	s.mu.Unlock()

	if err != nil {
		writeStoreError(writer, err)
		return
	}

	writeJSON(writer, http.StatusOK, order)
}

func (s *Server) getOrder(writer http.ResponseWriter, request *http.Request) {
	var order petstore.Order

	if !s.fetch(petstore.KindOrder, request.PathValue("orderId"), &order) {
		writeMessage(writer, http.StatusNotFound, "error", "Order not found")
		return
	}

	writeJSON(writer, http.StatusOK, order)
}

func (s *Server) updateOrder(writer http.ResponseWriter, request *http.Request) {
	key := request.PathValue("orderId")

	var order petstore.Order

	if err := decodeBody(request, &order); err != nil {
		writeMessage(writer, http.StatusBadRequest, "unknown", "Invalid Order")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var existing petstore.Order
	if !s.current(petstore.KindOrder, key, &existing) {
		writeMessage(writer, http.StatusNotFound, "error", "Order not found")
		return
	}

	order.ID = existing.ID
	if err := s.put(petstore.KindOrder, key, order, s.lag); err != nil {
		writeStoreError(writer, err)
		return
	}

	writeJSON(writer, http.StatusOK, order)
}

func (s *Server) deleteOrder(writer http.ResponseWriter, request *http.Request) {
	s.deleteByKey(writer, petstore.KindOrder, request.PathValue("orderId"))
}

func (s *Server) createUser(writer http.ResponseWriter, request *http.Request) {
	var user petstore.User

	if err := decodeBody(request, &user); err != nil || user.Username == "" {
		writeMessage(writer, http.StatusBadRequest, "unknown", "bad input")
		return
	}

	s.mu.Lock()
	stored, err := s.storeUser(user)
	s.mu.Unlock()

	if err != nil {
		writeStoreError(writer, err)
		return
	}

	writeMessage(writer, http.StatusOK, "unknown", strconv.FormatInt(stored.ID, 10))
}

func (s *Server) createUsers(writer http.ResponseWriter, request *http.Request) {
	var users []petstore.User

	if err := decodeBody(request, &users); err != nil {
		writeMessage(writer, http.StatusBadRequest, "unknown", "bad input")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range users {
		if user.Username == "" {
			continue
		}

		if _, err := s.storeUser(user); err != nil {
			writeStoreError(writer, err)
			return
		}
	}

	writeMessage(writer, http.StatusOK, "unknown", "ok")
}

// storeUser must be called with s.mu held.
func (s *Server) storeUser(user petstore.User) (petstore.User, error) {
	if user.ID == 0 {
		user.ID = s.allocateID()
	}

	if err := s.put(petstore.KindUser, user.Username, user, s.lag); err != nil {
		return user, err
	}

	return user, nil
}

func (s *Server) getUser(writer http.ResponseWriter, request *http.Request) {
	var user petstore.User

	if !s.fetch(petstore.KindUser, request.PathValue("username"), &user) {
		writeMessage(writer, http.StatusNotFound, "error", "User not found")
		return
	}

	writeJSON(writer, http.StatusOK, user)
}

func (s *Server) updateUser(writer http.ResponseWriter, request *http.Request) {
	key := request.PathValue("username")

	var user petstore.User

	if err := decodeBody(request, &user); err != nil {
		writeMessage(writer, http.StatusBadRequest, "unknown", "bad input")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var existing petstore.User
	if !s.current(petstore.KindUser, key, &existing) {
		writeMessage(writer, http.StatusNotFound, "error", "User not found")
		return
	}

	if user.Username == "" {
		user.Username = key
	}

	if user.ID == 0 {
		user.ID = existing.ID
	}

	if err := s.put(petstore.KindUser, user.Username, user, s.lag); err != nil {
		writeStoreError(writer, err)
		return
	}

	if user.Username != key {
		s.remove(petstore.KindUser, key)
	}

	writeMessage(writer, http.StatusOK, "unknown", strconv.FormatInt(user.ID, 10))
}

func (s *Server) deleteUser(writer http.ResponseWriter, request *http.Request) {
	s.deleteByKey(writer, petstore.KindUser, request.PathValue("username"))
}

func (s *Server) login(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()
	if query.Get("username") == "" || query.Get("password") == "" {
		writeMessage(writer, http.StatusBadRequest, "unknown", "Invalid username/password supplied")
		return
	}

	s.mu.Lock()
	session := strconv.FormatInt(s.allocateID(), 10)
	expires := s.now().Add(sessionTTL).UTC()
	s.mu.Unlock()

	writer.Header().Set("X-Rate-Limit", strconv.Itoa(rateLimit))
	writer.Header().Set("X-Expires-After", expires.Format(time.UnixDate))

	writeMessage(writer, http.StatusOK, "unknown", "logged in user session:"+session)
}

func (s *Server) logout(writer http.ResponseWriter, _ *http.Request) {
	writeMessage(writer, http.StatusOK, "unknown", "ok")
}

func (s *Server) deleteByKey(writer http.ResponseWriter, kind petstore.Kind, key string) {
	s.mu.Lock()
	existed := s.remove(kind, key)
	s.mu.Unlock()

	if !existed {
		writeMessage(writer, http.StatusNotFound, "error", string(kind)+" not found")
		return
	}

	writeMessage(writer, http.StatusOK, "unknown", key)
}

func (s *Server) visiblePets() []petstore.Pet {
	s.mu.Lock()
	bodies := s.tables[petstore.KindPet].visible()
	s.mu.Unlock()

	pets := make([]petstore.Pet, 0, len(bodies))

	for _, body := range bodies {
		var pet petstore.Pet
		if err := json.Unmarshal(body, &pet); err == nil {
			pets = append(pets, pet)
		}
	}

	return pets
}
