package client_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/hostbound/hostbound/client"
)

func ExampleNew() {
	c, err := client.New("https://api.example.com:8443/v2",
		client.WithTimeout(10*time.Second),
	)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer c.Close()

	fmt.Println(c.Scheme(), c.Host(), c.Port(), c.PathPrefix())
	// Output: https api.example.com 8443 v2/
}

func ExampleClient_URLFor() {
	c, _ := client.New("https://api.example.com/v1")

	u := c.URLFor("/users", client.WithParams(map[string]string{"page": "2"}))

	fmt.Println(u)
	// Output: https://api.example.com/v1/users?page=2
}

func ExampleClient_URLFor_absolute() {
	c, _ := client.New("api.example.com", client.WithPathPrefix("/v1"))

	u := c.URLFor("/admin/health", client.WithAbsolutePath())

	fmt.Println(u)
	// Output: http://api.example.com/admin/health
}

func ExampleClient_Get() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ok"}`)
	}))
	defer ts.Close()

	c, _ := client.New(ts.URL)
	defer c.Close()

	var reply struct {
		Status string `json:"status"`
	}
	if _, err := c.Get(context.Background(), "/status", client.WithResponseInto(&reply)); err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(reply.Status)
	// Output: ok
}

func ExampleClient_Post() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"created":true}`)
	}))
	defer ts.Close()

	c, _ := client.New(ts.URL)
	defer c.Close()

	var reply struct {
		Created bool `json:"created"`
	}
	_, err := c.Post(context.Background(), "/users",
		client.WithPayload(map[string]string{"name": "alice"}),
		client.WithResponseInto(&reply),
	)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(reply.Created)
	// Output: true
}

func ExampleClient_Get_statusError() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such user", http.StatusNotFound)
	}))
	defer ts.Close()

	c, _ := client.New(ts.URL)
	defer c.Close()

	_, err := c.Get(context.Background(), "/users/42")

	var statusErr *client.StatusError
	if errors.As(err, &statusErr) {
		fmt.Println(statusErr.StatusCode)
	}
	// Output: 404
}

func ExampleWithErrorHook() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oops", http.StatusBadGateway)
	}))
	defer ts.Close()

	c, _ := client.New(ts.URL, client.WithErrorHook(func(cause error, url string) error {
		return fmt.Errorf("backend unavailable: %w", cause)
	}))
	defer c.Close()

	_, err := c.Get(context.Background(), "/")
	fmt.Println(errors.Is(err, client.ErrErrorStatus))
	// Output: true
}

func ExampleWithRateLimit() {
	c, err := client.New("api.example.com",
		client.WithRateLimit(500*time.Millisecond), // at most one request every 500ms
	)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer c.Close()

	fmt.Println("rate limited client created")
	// Output: rate limited client created
}
