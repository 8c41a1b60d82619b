package order

// ResolveShipmentState infers the state a shipment should report for its order.
// A pending shipment stays pending until the order is approved (fraud hold).
// A canceled shipment stays canceled.
func ResolveShipmentState(o *Order, s *Shipment) ShipmentState {
	if s.State == ShipmentCanceled {
		return ShipmentCanceled
	}
	if s.State == ShipmentPending && !o.Approved() {
		return ShipmentPending
	}
	if o.Canceled() {
		return ShipmentCanceled
	}
	if !o.CanShip() {
		return ShipmentPending
	}
	if s.State == ShipmentShipped {
		return ShipmentShipped
	}
	return ShipmentReady
}

// CanReady reports whether a pending shipment may move to ready
func (s *Shipment) CanReady(o *Order) bool {
	return s.State == ShipmentPending && ResolveShipmentState(o, s) == ShipmentReady
}
