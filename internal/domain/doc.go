// Package domain contains the core business entities of the accounts service:
// the Account identity record and its exclusively owned Preference.
//
// Entities here are plain structs with constructor and validation helpers.
// They carry no persistence or transport concerns; the store package maps them
// to tables and the api package maps them to response shapes.
package domain
