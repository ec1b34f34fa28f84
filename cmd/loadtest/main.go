package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Result records one HTTP outcome so runs can be aggregated afterwards.
type Result struct {
	Status int
	Body   string
	Err    error
}

func main() {
	baseURL := flag.String("base", "http://localhost:8080", "server base url")
	productID := flag.Int("product", 1, "product id")
	stockCheck := flag.Bool("stock", true, "check remaining stock after test")

	// Oversell probe: many distinct buyers racing for the same product.
	nUsers := flag.Int("users", 200, "distinct users")
	concurrency := flag.Int("c", 50, "max concurrency")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	fmt.Printf("registering %d users...\n", *nUsers)
	tokens := make([]string, *nUsers)
	for i := range tokens {
		token, err := registerUser(client, *baseURL, i)
		if err != nil {
			panic(fmt.Sprintf("user %d setup failed: %v", i, err))
		}
		tokens[i] = token
	}

	// 1) Oversell test: every user tries to buy one unit at once. The sum of
	// 201s must not exceed the available code count.
	fmt.Printf("start oversell test: product=%d users=%d concurrency=%d\n", *productID, *nUsers, *concurrency)
	results := runBuy(client, *baseURL, *productID, tokens, *concurrency)
	printSummary("oversell", results)

	if *stockCheck {
		stock, err := getStock(client, *baseURL, *productID)
		if err != nil {
			fmt.Println("stock check err:", err)
		} else {
			fmt.Println("final available stock:", stock)
		}
	}

	// 2) Rate limit test: one user hammering the endpoint. With
	// ORDER_RATE_LIMIT=5 this should show a pile of 429s.
	fmt.Println("\nstart rate limit test: same user, 50 requests, concurrency 50")
	sameUser := make([]string, 50)
	for i := range sameUser {
		sameUser[i] = tokens[0]
	}
	results2 := runBuy(client, *baseURL, *productID, sameUser, 50)
	printSummary("rate_limit", results2)
}

// registerUser creates a throwaway account; registration already answers
// with a usable bearer token.
func registerUser(client *http.Client, baseURL string, idx int) (string, error) {
	email := fmt.Sprintf("loadtest-%d-%d@example.com", time.Now().UnixNano(), idx)
	reg := map[string]string{
		"name":     fmt.Sprintf("Load Tester %d", idx),
		"email":    email,
		"password": "loadtest-pass",
	}
	body, err := doPOST(client, baseURL+"/api/auth/register", reg, nil)
	if err != nil {
		return "", err
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("no token in register response: %s", string(body))
	}
	return out.Token, nil
}

func runBuy(client *http.Client, baseURL string, productID int, tokens []string, concurrency int) []Result {
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	results := make([]Result, len(tokens))

	for i := range tokens {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			results[idx] = buyOnce(client, baseURL, productID, tokens[idx])
		}(i)
	}

	wg.Wait()
	return results
}

func buyOnce(client *http.Client, baseURL string, productID int, token string) Result {
	req := map[string]any{
		"items": []map[string]any{
			{"product_id": productID, "quantity": 1},
		},
	}
	b, _ := json.Marshal(req)
	httpReq, _ := http.NewRequest(http.MethodPost, baseURL+"/api/orders", bytes.NewReader(b))
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(httpReq)
	if err != nil {
		return Result{Err: err}
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return Result{Status: resp.StatusCode, Body: string(body)}
}

// printSummary prints the status code distribution for one run.
func printSummary(name string, results []Result) {
	count := map[int]int{}
	errCount := 0
	for _, r := range results {
		if r.Err != nil {
			errCount++
			continue
		}
		count[r.Status]++
	}
	fmt.Printf("[%s] http status summary:\n", name)
	for _, code := range []int{201, 400, 404, 409, 429, 500} {
		if count[code] > 0 {
			fmt.Printf("  %d -> %d\n", code, count[code])
		}
	}
	if errCount > 0 {
		fmt.Printf("  errors -> %d\n", errCount)
	}
}

func doPOST(client *http.Client, url string, body any, headers map[string]string) ([]byte, error) {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req, _ := http.NewRequest(http.MethodPost, url, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status=%d body=%s", resp.StatusCode, string(b))
	}
	return b, nil
}

// getStock asks the public product endpoint for the remaining available
// codes, used to verify the run did not oversell.
func getStock(client *http.Client, baseURL string, productID int) (int64, error) {
	resp, err := client.Get(fmt.Sprintf("%s/api/products/%d", baseURL, productID))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("status=%d body=%s", resp.StatusCode, string(b))
	}

	var out struct {
		Product struct {
			Stock int64 `json:"stock"`
		} `json:"product"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return 0, err
	}
	return out.Product.Stock, nil
}
