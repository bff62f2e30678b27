// Package handler implements the HTTP surface of the Commons API.
//
// Handlers stay thin: decode and validate the request body, pull the
// authenticated principal from the context, call one service method, and
// map the result or error to a response. All authorization lives in the
// service layer; error translation is centralized in MapServiceError so
// every endpoint speaks RFC 9457 problem details.
package handler
