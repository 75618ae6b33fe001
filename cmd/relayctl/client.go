package main

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// newClient builds the REST client from the persistent flags.
func newClient() *resty.Client {
	c := resty.New().
		SetBaseURL(apiFlag).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)
	if keyFlag != "" {
		c.SetAuthToken(keyFlag)
	}
	return c
}

// checkStatus turns a non-2xx response into an error carrying the body.
func checkStatus(resp *resty.Response) error {
	if resp.IsError() {
		return fmt.Errorf("%s: %s", resp.Status(), resp.String())
	}
	return nil
}
