package graph

import (
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
)

// Scope requested for application permissions.
const GraphDefaultScope = "https://graph.microsoft.com/.default"

// SiteSearchAll lists every site the application can see.
const SiteSearchAll = "*"

type (
	// Config holds the service credentials and listing behaviour.
	Config struct {
		TenantID     string
		ClientID     string
		ClientSecret string

		// FollowPages walks @odata.nextLink; when false only the first page is read.
		FollowPages bool
		// PageSize sets $top on children listings, zero keeps the server default.
		PageSize int32
	}

	// GraphClient reads directory data from Microsoft Graph.
	GraphClient struct {
		client      *msgraphsdk.GraphServiceClient
		followPages bool
		pageSize    int32
	}

	// pageable is the part of a Graph collection response needed to read it.
	pageable[T any] interface {
		GetValue() []T
		GetOdataNextLink() *string
	}
)
