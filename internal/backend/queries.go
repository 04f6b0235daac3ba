package backend

// CollectiveQuery fetches a collective with its tiers for the checkout
const CollectiveQuery = `
query Collective($slug: String) {
  Collective(slug: $slug) {
    id
    slug
    path
    name
    type
    tags
    description
    longDescription
    twitterHandle
    website
    image
    backgroundImage
    isActive
    currency
    settings
    startsAt
    endsAt
    timezone
    location {
      name
      address
    }
    host {
      id
      name
      slug
      image
      settings
    }
    parentCollective {
      id
      slug
      name
      image
      backgroundImage
    }
    stats {
      id
      yearlyBudget
      balance
      backers {
        all
      }
    }
    tiers {
      id
      type
      name
      slug
      description
      amount
      currency
      interval
      presets
      maxQuantity
      button
      stats {
        id
        availableQuantity
      }
    }
  }
}
`

// EventsQuery fetches the events of a collective
const EventsQuery = `
query allEvents($slug: String, $limit: Int, $offset: Int) {
  allEvents(slug: $slug, limit: $limit, offset: $offset) {
    id
    slug
    name
    type
    description
    image
    startsAt
    endsAt
    timezone
    location {
      name
      address
    }
  }
}
`

// SearchQuery runs a full-text collective search
const SearchQuery = `
query search($term: String!, $limit: Int, $offset: Int) {
  search(term: $term, limit: $limit, offset: $offset) {
    collectives {
      id
      slug
      name
      type
      description
      image
      backgroundImage
      currency
      stats {
        id
        yearlyBudget
        balance
        backers {
          all
        }
      }
    }
    limit
    offset
    total
  }
}
`

// CollectivesQuery lists collectives of a host
const CollectivesQuery = `
query allCollectives($HostCollectiveId: Int, $orderBy: CollectiveOrderField, $orderDirection: OrderDirection, $limit: Int, $offset: Int) {
  allCollectives(HostCollectiveId: $HostCollectiveId, orderBy: $orderBy, orderDirection: $orderDirection, limit: $limit, offset: $offset) {
    collectives {
      id
      slug
      name
      type
      description
      image
      currency
      stats {
        id
        balance
        backers {
          all
        }
      }
    }
  }
}
`

// LoggedInUserQuery fetches the user owning the bearer token
const LoggedInUserQuery = `
query LoggedInUser {
  LoggedInUser {
    id
    email
    firstName
    lastName
    collective {
      id
      slug
      name
      type
    }
  }
}
`
