package backend

// CreateOrderMutation submits an order against a collective or tier
const CreateOrderMutation = `
mutation createOrder($order: OrderInputType!) {
  createOrder(order: $order) {
    id
    status
    fromCollective {
      id
      slug
    }
    collective {
      id
      slug
    }
    transactions(type: "CREDIT") {
      id
    }
  }
}
`

// CreateCollectiveMutation creates a collective administered by the token owner
const CreateCollectiveMutation = `
mutation createCollective($collective: CollectiveInputType!) {
  createCollective(collective: $collective) {
    id
    slug
  }
}
`

// CreateEventMutation creates an event under a parent collective
const CreateEventMutation = `
mutation createEvent($event: EventInputType!) {
  createEvent(event: $event) {
    id
    slug
    name
    parentCollective {
      id
      slug
    }
  }
}
`

// EditEventMutation updates an event
const EditEventMutation = `
mutation editEvent($event: EventInputType!) {
  editEvent(event: $event) {
    id
    slug
    name
    parentCollective {
      id
      slug
    }
  }
}
`
